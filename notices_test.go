package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoticeCenterExpiresAfterSharedTTL(t *testing.T) {
	center := newNoticeCenter(4 * time.Second)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	center.now = func() time.Time { return current }

	center.Push("session", "User created")
	center.Push("session", "Company registered")
	assert.Len(t, center.Active("session"), 2)

	current = current.Add(3 * time.Second)
	assert.Len(t, center.Active("session"), 2)

	current = current.Add(2 * time.Second)
	assert.Empty(t, center.Active("session"))
}

func TestNoticeCenterDismissRemovesSingleNotice(t *testing.T) {
	center := newNoticeCenter(time.Minute)
	first := center.Push("session", "one")
	center.Push("session", "two")

	center.Dismiss("session", first)

	active := center.Active("session")
	assert.Len(t, active, 1)
	assert.Equal(t, "two", active[0].Message)
}

func TestNoticeCenterIsolatesSessions(t *testing.T) {
	center := newNoticeCenter(time.Minute)
	center.Push("alice", "hello")

	assert.Len(t, center.Active("alice"), 1)
	assert.Empty(t, center.Active("bob"))
}

func TestNoticeCenterTTLSeconds(t *testing.T) {
	assert.Equal(t, 4, newNoticeCenter(0).TTLSeconds())
	assert.Equal(t, 7, newNoticeCenter(7*time.Second).TTLSeconds())
}
