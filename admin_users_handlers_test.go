package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(count int) []User {
	users := make([]User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, User{
			ID:       fmt.Sprintf("u%02d", i),
			FullName: fmt.Sprintf("User %02d", i),
			Email:    fmt.Sprintf("user%02d@example.com", i),
			Phone:    "0788000000",
			Role:     "user",
			District: "Gasabo",
		})
	}
	return users
}

func TestAdminUsersPageFetchesOnceAndPaginates(t *testing.T) {
	app, router := newAdminTestServer(t)
	listCalls := 0
	app.listUsers = func(ctx context.Context) ([]User, error) {
		listCalls++
		return seedUsers(25), nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user00@example.com")
	assert.NotContains(t, rec.Body.String(), "user15@example.com")
	assert.Contains(t, rec.Body.String(), "Page 1 of 3")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users?page=2", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user15@example.com")

	assert.Equal(t, 1, listCalls, "navigation reuses the cached collection")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users?refresh=1", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, listCalls, "refresh forces a refetch")
}

func TestAdminUsersPageQueryFiltersAndResetsPage(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) {
		return seedUsers(25), nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users?page=3", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page 3 of 3")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users?q=User+01", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user01@example.com")
	assert.NotContains(t, rec.Body.String(), "user02@example.com")
}

func TestAdminUsersPageShowsEmptyState(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) {
		return seedUsers(5), nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users?q=zzz", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No users found")
}

func TestAdminUsersPageShowsLoadErrorWithRetry(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) {
		return nil, &apiError{Status: http.StatusBadGateway, Code: "server_error", Message: "backend unavailable"}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend unavailable")
	assert.Contains(t, rec.Body.String(), "refresh=1")
}

func TestAdminUserCreateSubmitValidationFailureIssuesNoBackendCall(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) { return nil, nil }
	createCalls := 0
	app.createUser = func(ctx context.Context, payload UserPayload) (*User, error) {
		createCalls++
		return nil, nil
	}

	form := url.Values{}
	form.Set("full_name", "Jean Mukiza")
	form.Set("email", "jean@example.com")
	form.Set("phone", "0788123456")
	form.Set("password", "secret1")
	form.Set("confirm_password", "different")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/users/create", form.Encode()))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")
	assert.Zero(t, createCalls)
	assert.Contains(t, rec.Body.String(), "jean@example.com", "typed values survive the failed submit")
}

func TestAdminUserCreateSubmitSuccess(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) { return nil, nil }

	var captured UserPayload
	app.createUser = func(ctx context.Context, payload UserPayload) (*User, error) {
		captured = payload
		return &User{ID: "u-new", FullName: payload.FullName, Email: payload.Email, Phone: payload.Phone, Role: payload.Role}, nil
	}

	// Prime the screen so the post-create render reuses the cache.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{}
	form.Set("full_name", "Jean Mukiza")
	form.Set("email", "jean@example.com")
	form.Set("phone", "0788123456")
	form.Set("role", "user")
	form.Set("password", "secret1")
	form.Set("confirm_password", "secret1")
	form.Set("district", "Gasabo")
	form.Set("sector", "Kacyiru")
	form.Set("cell", "Kamatamu")
	form.Set("village", "Urugwiro")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/users/create", form.Encode()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/ecoadmin/users")
	assert.Contains(t, rec.Header().Get("Location"), "notice=")
	assert.Equal(t, "Jean Mukiza", captured.FullName)
	assert.Equal(t, "Gasabo", captured.District)
	assert.Equal(t, "Kacyiru", captured.Sector)

	// The created record lands in the cached collection without a refetch.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users", ""))
	assert.Contains(t, rec.Body.String(), "jean@example.com")
}

func TestAdminUserCreateSubmitSurfacesBackendValidationMessage(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) { return nil, nil }
	app.createUser = func(ctx context.Context, payload UserPayload) (*User, error) {
		return nil, &apiError{Status: http.StatusUnprocessableEntity, Code: "validation_error", Message: "email already taken"}
	}

	form := url.Values{}
	form.Set("full_name", "Jean Mukiza")
	form.Set("email", "jean@example.com")
	form.Set("phone", "0788123456")
	form.Set("password", "secret1")
	form.Set("confirm_password", "secret1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/users/create", form.Encode()))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already taken")
}

func TestAdminUserDeleteSubmitRemovesExactlyThatUser(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) {
		return seedUsers(3), nil
	}
	var deletedID string
	app.deleteUser = func(ctx context.Context, id string) error {
		deletedID = id
		return nil
	}

	// Load the collection into the session first.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/users/u01/delete", ""))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "u01", deletedID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users", ""))
	body := rec.Body.String()
	assert.NotContains(t, body, "user01@example.com")
	assert.Contains(t, body, "user00@example.com")
	assert.Contains(t, body, "user02@example.com")
}

func TestAdminUsersPDFHandlerStreamsBackendFile(t *testing.T) {
	app, router := newAdminTestServer(t)
	payload := []byte("%PDF-1.7 users report")
	app.usersPDF = func(ctx context.Context) ([]byte, string, error) {
		return payload, "application/pdf", nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users/export.pdf", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "users.pdf")
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestAdminUsersEditModalPrefillsFromRecord(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.listUsers = func(ctx context.Context) ([]User, error) {
		return []User{{ID: "u1", FullName: "Jean Mukiza", Email: "jean@example.com", Phone: "0788123456", Role: "user", District: "Gasabo", Sector: "Kacyiru"}}, nil
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authenticatedRequest(t, app, http.MethodGet, "/ecoadmin/users?modal=edit&id=u1", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Jean Mukiza"`)
	assert.Contains(t, body, "/ecoadmin/users/u1/edit")
}
