package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminMaterialsPageRendersRatings(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listMaterials = func(ctx context.Context) ([]EducationMaterial, error) {
		return []EducationMaterial{
			{ID: "m1", Title: "Sorting at home", Category: "sorting", Rating: 4.5, CreatedAt: "2026-08-01T10:00:00Z"},
		}, nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/materials", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sorting at home")
	assert.Contains(t, rec.Body.String(), "4.5")
}

func TestAdminMaterialCreateSubmitValidatesInOrder(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listMaterials = func(ctx context.Context) ([]EducationMaterial, error) { return nil, nil }
	createCalls := 0
	app.createMaterial = func(ctx context.Context, payload MaterialPayload) (*EducationMaterial, error) {
		createCalls++
		return nil, nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/materials/create", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required")

	form := url.Values{}
	form.Set("title", "Sorting at home")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/materials/create", form.Encode()))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Category is required")

	assert.Zero(t, createCalls)
}

func TestAdminMaterialEditSubmitPatchesCachedRow(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listMaterials = func(ctx context.Context) ([]EducationMaterial, error) {
		return []EducationMaterial{{ID: "m1", Title: "Old title", Category: "general"}}, nil
	}
	app.updateMaterial = func(ctx context.Context, id string, payload MaterialPayload) (*EducationMaterial, error) {
		return &EducationMaterial{ID: id, Title: payload.Title, Category: payload.Category}, nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/materials", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{}
	form.Set("title", "New title")
	form.Set("category", "recycling")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/materials/m1/edit", form.Encode()))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/materials", ""))
	assert.Contains(t, rec.Body.String(), "New title")
	assert.NotContains(t, rec.Body.String(), "Old title")
}

func TestAdminMaterialDeleteSubmitRemovesRow(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listMaterials = func(ctx context.Context) ([]EducationMaterial, error) {
		return []EducationMaterial{
			{ID: "m1", Title: "Sorting at home", Category: "sorting"},
			{ID: "m2", Title: "Composting basics", Category: "composting"},
		}, nil
	}
	var deletedID string
	app.deleteMaterial = func(ctx context.Context, id string) error {
		deletedID = id
		return nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/materials", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/materials/m1/delete", ""))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "m1", deletedID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/materials", ""))
	assert.NotContains(t, rec.Body.String(), "Sorting at home")
	assert.Contains(t, rec.Body.String(), "Composting basics")
}
