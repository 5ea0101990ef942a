package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModalOpenCreateCarriesNoTarget(t *testing.T) {
	m := newModalState()

	assert.True(t, m.Open(modalCreate, "ignored"))
	assert.Equal(t, modalCreate, m.Kind())
	assert.Empty(t, m.TargetID())
	assert.True(t, m.IsOpen())
}

func TestModalOpenEditRequiresTarget(t *testing.T) {
	m := newModalState()

	assert.False(t, m.Open(modalEdit, ""))
	assert.False(t, m.IsOpen())

	assert.True(t, m.Open(modalEdit, "user-1"))
	assert.Equal(t, modalEdit, m.Kind())
	assert.Equal(t, "user-1", m.TargetID())
}

func TestModalOpenImplicitlyClosesPrevious(t *testing.T) {
	m := newModalState()
	m.Open(modalEdit, "user-1")

	assert.True(t, m.Open(modalDelete, "user-2"))
	assert.Equal(t, modalDelete, m.Kind())
	assert.Equal(t, "user-2", m.TargetID())
}

func TestModalCloseClearsTarget(t *testing.T) {
	m := newModalState()
	m.Open(modalDetails, "user-1")

	m.Close()
	assert.False(t, m.IsOpen())
	assert.Empty(t, m.TargetID())
	assert.Equal(t, modalNone, m.Kind())
}

func TestModalRejectsUnknownKind(t *testing.T) {
	m := newModalState()
	m.Open(modalEdit, "user-1")

	assert.False(t, m.Open(modalKind("wizard"), "user-2"))
	assert.Equal(t, modalEdit, m.Kind())
	assert.Equal(t, "user-1", m.TargetID())
}
