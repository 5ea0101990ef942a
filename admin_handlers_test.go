package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAdminTestServer(t *testing.T) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := openStateStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &Config{
		Env:           "test",
		SigningSecret: "0123456789abcdef",
		NoticeSeconds: 4,
	}
	gateway := &Gateway{
		Client:      &http.Client{},
		Credentials: store,
	}
	app := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), store, gateway)

	router := gin.New()
	app.registerAdminRoutes(router)
	return app, router
}

func authenticatedRequest(t *testing.T, app *App, method string, target string, body string) *http.Request {
	return authenticatedRequestWithSession(
		t,
		app,
		method,
		target,
		body,
		AdminSession{SessionID: "test-session", Email: "admin@example.com", Name: "Admin", Role: "admin"},
	)
}

func authenticatedRequestWithSession(t *testing.T, app *App, method string, target string, body string, session AdminSession) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
	}
	token, err := app.createAdminSessionToken(session)
	if err != nil {
		t.Fatalf("create session token: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: adminCookieName, Value: token, Path: "/"})
	return req
}

func findResponseCookie(response *http.Response, name string) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestAdminLoginSubmitSuccessSetsCookieAndRedirects(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.backendLogin = func(ctx context.Context, email, password string) (*LoginResult, error) {
		if email != "admin@example.com" || password != "secret" {
			t.Fatalf("unexpected credentials: %s / %s", email, password)
		}
		return &LoginResult{Token: "backend-token", Role: "admin", Name: "Admin"}, nil
	}

	form := url.Values{}
	form.Set("email", "admin@example.com")
	form.Set("password", "secret")
	form.Set("next", "/ecoadmin/companies")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ecoadmin/login", strings.NewReader(form.Encode()))
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/ecoadmin/companies" {
		t.Fatalf("unexpected redirect location: %s", location)
	}

	resp := rec.Result()
	sessionCookie := findResponseCookie(resp, adminCookieName)
	if sessionCookie == nil {
		t.Fatal("expected admin session cookie")
	}
	if sessionCookie.Value == "" {
		t.Fatal("expected session cookie value")
	}

	stored, err := app.store.Token(context.Background())
	if err != nil {
		t.Fatalf("read stored token: %v", err)
	}
	if stored != "backend-token" {
		t.Fatalf("expected backend token persisted, got %q", stored)
	}
}

func TestAdminLoginSubmitRejectsInvalidCredentials(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.backendLogin = func(ctx context.Context, email, password string) (*LoginResult, error) {
		return nil, &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "invalid credentials"}
	}

	form := url.Values{}
	form.Set("email", "admin@example.com")
	form.Set("password", "wrong")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ecoadmin/login", strings.NewReader(form.Encode()))
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password") {
		t.Fatalf("expected invalid credentials message, got: %s", rec.Body.String())
	}
	if findResponseCookie(rec.Result(), adminCookieName) != nil {
		t.Fatal("expected no session cookie on failed login")
	}
}

func TestAdminLoginSubmitNonAdminRoleIsDenied(t *testing.T) {
	app, router := newAdminTestServer(t)
	app.backendLogin = func(ctx context.Context, email, password string) (*LoginResult, error) {
		return &LoginResult{Token: "token", Role: "user", Name: "Resident"}, nil
	}

	form := url.Values{}
	form.Set("email", "user@example.com")
	form.Set("password", "secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ecoadmin/login", strings.NewReader(form.Encode()))
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected %d, got %d", http.StatusForbidden, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Access denied") {
		t.Fatalf("expected access denied page, got: %s", rec.Body.String())
	}
}

func TestAdminRoutesRedirectToLoginWithoutSession(t *testing.T) {
	_, router := newAdminTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ecoadmin/users", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); !strings.HasPrefix(location, "/ecoadmin/login?next=") {
		t.Fatalf("unexpected redirect location: %s", location)
	}
}

func TestAdminLogoutClearsSessionAndStoredToken(t *testing.T) {
	app, router := newAdminTestServer(t)
	if err := app.store.SetToken(context.Background(), "backend-token"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, app, http.MethodPost, "/ecoadmin/logout", "")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	expired := findResponseCookie(rec.Result(), adminCookieName)
	if expired == nil || expired.MaxAge != -1 {
		t.Fatal("expected expired session cookie")
	}
	stored, err := app.store.Token(context.Background())
	if err != nil {
		t.Fatalf("read stored token: %v", err)
	}
	if stored != "" {
		t.Fatalf("expected stored token cleared, got %q", stored)
	}
}

func TestSanitizeAdminRedirectTarget(t *testing.T) {
	cases := map[string]string{
		"":                          "/ecoadmin",
		"/ecoadmin/users?page=2":    "/ecoadmin/users?page=2",
		"/ecoadmin/login":           "/ecoadmin",
		"https://evil.example/x":    "/ecoadmin",
		"//evil.example/x":          "/ecoadmin",
		"/somewhere/else":           "/ecoadmin",
		"/ecoadmin/companies":       "/ecoadmin/companies",
	}
	for input, expected := range cases {
		if got := sanitizeAdminRedirectTarget(input); got != expected {
			t.Errorf("sanitize(%q) = %q, expected %q", input, got, expected)
		}
	}
}
