package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Backend wire types. The REST backend owns these records; the dashboard only
// holds read-only cached copies plus derived views.

type User struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	District  string `json:"district"`
	Sector    string `json:"sector"`
	Cell      string `json:"cell"`
	Village   string `json:"village"`
	Street    string `json:"street,omitempty"`
	CreatedAt string `json:"created_at"`
}

type Company struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	WasteTypes []string `json:"waste_types"`
	District   string   `json:"district"`
	Sector     string   `json:"sector"`
	Cell       string   `json:"cell"`
	Village    string   `json:"village"`
	Street     string   `json:"street,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

type CommunityEvent struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	EventDate    string `json:"event_date"`
	StartTime    string `json:"start_time"`
	District     string `json:"district"`
	Sector       string `json:"sector"`
	Participants int    `json:"participants"`
	CreatedAt    string `json:"created_at"`
}

type EducationMaterial struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ContentURL  string  `json:"content_url"`
	Rating      float64 `json:"rating"`
	Bookmarks   int     `json:"bookmarks"`
	CreatedAt   string  `json:"created_at"`
}

var bookingStatuses = []string{"pending", "approved", "completed", "cancelled"}

type Booking struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	CompanyID        string           `json:"company_id"`
	Status           string           `json:"status"`
	Price            *decimal.Decimal `json:"price"`
	PriceConfirmed   *bool            `json:"price_confirmed"`
	PaymentConfirmed *bool            `json:"payment_confirmed"`
	WasteTypes       []string         `json:"waste_types"`
	Notes            string           `json:"notes,omitempty"`
	SortedProperly   *bool            `json:"sorted_properly,omitempty"`
	PickupDate       string           `json:"pickup_date"`
	CreatedAt        string           `json:"created_at"`
}

type UserPayload struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
	District string `json:"district,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Cell     string `json:"cell,omitempty"`
	Village  string `json:"village,omitempty"`
	Street   string `json:"street,omitempty"`
}

type CompanyPayload struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	WasteTypes []string `json:"waste_types"`
	District   string   `json:"district"`
	Sector     string   `json:"sector"`
	Cell       string   `json:"cell"`
	Village    string   `json:"village"`
	Street     string   `json:"street,omitempty"`
}

type EventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	EventDate   string `json:"event_date"`
	StartTime   string `json:"start_time,omitempty"`
	District    string `json:"district"`
	Sector      string `json:"sector,omitempty"`
}

type MaterialPayload struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ContentURL  string `json:"content_url,omitempty"`
}

type ApprovalPayload struct {
	Price          decimal.Decimal `json:"price"`
	Notes          string          `json:"notes"`
	SortedProperly bool            `json:"sorted_properly"`
}

type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// CredentialProvider hands out the bearer token for outgoing calls. The
// gateway reads it fresh on every request so a token change takes effect on
// the very next call.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// Gateway is the typed HTTP client for the backend REST API. It performs no
// retries and no caching; backend status codes and error payloads pass
// through unchanged as apiError values.
type Gateway struct {
	Client      *http.Client
	Credentials CredentialProvider

	// BaseURLOverride wins over any host heuristic when set.
	BaseURLOverride string
	// PublicHost is the host the dashboard is served from, used for the
	// hosted-proxy heuristic. Consulted lazily at call time.
	PublicHost string
}

const (
	hostedDomainSuffix = ".ecocollect.rw"
	devBackendBaseURL  = "http://localhost:5000/api/v1"
)

// baseURL resolves the backend address per call, in priority order: explicit
// override, hosted-proxy path for a known domain, development default.
func (g *Gateway) baseURL() string {
	if override := strings.TrimSpace(g.BaseURLOverride); override != "" {
		return strings.TrimRight(override, "/")
	}
	host := strings.TrimSpace(g.PublicHost)
	if host != "" && (strings.HasSuffix(host, hostedDomainSuffix) || host == strings.TrimPrefix(hostedDomainSuffix, ".")) {
		return "https://" + host + "/api/v1"
	}
	return devBackendBaseURL
}

type backendErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func backendErrorCode(status int) string {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return "validation_error"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 500:
		return "server_error"
	default:
		return "request_failed"
	}
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	target := g.baseURL() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	token, err := g.Credentials.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var payload backendErrorPayload
		_ = json.Unmarshal(raw, &payload)
		message := strings.TrimSpace(payload.Message)
		if message == "" {
			message = strings.TrimSpace(payload.Error)
		}
		return &apiError{Status: resp.StatusCode, Code: backendErrorCode(resp.StatusCode), Message: message}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// binary fetches an endpoint whose body is an opaque file. The payload is
// never parsed, only handed on for download.
func (g *Gateway) binary(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL()+path, nil)
	if err != nil {
		return nil, "", err
	}
	token, err := g.Credentials.Token(ctx)
	if err != nil {
		return nil, "", err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var payload backendErrorPayload
		_ = json.Unmarshal(raw, &payload)
		message := strings.TrimSpace(payload.Message)
		if message == "" {
			message = strings.TrimSpace(payload.Error)
		}
		return nil, "", &apiError{Status: resp.StatusCode, Code: backendErrorCode(resp.StatusCode), Message: message}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func (g *Gateway) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := g.do(ctx, http.MethodPost, "/auth/login", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := g.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (g *Gateway) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := g.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *Gateway) CreateUser(ctx context.Context, payload UserPayload) (*User, error) {
	var user User
	if err := g.do(ctx, http.MethodPost, "/users", nil, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *Gateway) UpdateUser(ctx context.Context, id string, payload UserPayload) (*User, error) {
	var user User
	if err := g.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *Gateway) DeleteUser(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}

// UsersPDF downloads the backend-rendered users report unparsed.
func (g *Gateway) UsersPDF(ctx context.Context) ([]byte, string, error) {
	return g.binary(ctx, "/users/pdf")
}

func (g *Gateway) ListCompanies(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := g.do(ctx, http.MethodGet, "/companies", nil, nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (g *Gateway) GetCompany(ctx context.Context, id string) (*Company, error) {
	var company Company
	if err := g.do(ctx, http.MethodGet, "/companies/"+url.PathEscape(id), nil, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (g *Gateway) RegisterCompany(ctx context.Context, payload CompanyPayload) (*Company, error) {
	var company Company
	if err := g.do(ctx, http.MethodPost, "/companies/register", nil, payload, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (g *Gateway) UpdateCompany(ctx context.Context, id string, payload CompanyPayload) (*Company, error) {
	var company Company
	if err := g.do(ctx, http.MethodPut, "/companies/"+url.PathEscape(id), nil, payload, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (g *Gateway) DeleteCompany(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/companies/"+url.PathEscape(id), nil, nil, nil)
}

func (g *Gateway) ListCommunityEvents(ctx context.Context) ([]CommunityEvent, error) {
	var events []CommunityEvent
	if err := g.do(ctx, http.MethodGet, "/community-events", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (g *Gateway) CreateCommunityEvent(ctx context.Context, payload EventPayload) (*CommunityEvent, error) {
	var event CommunityEvent
	if err := g.do(ctx, http.MethodPost, "/community-events", nil, payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (g *Gateway) UpdateCommunityEvent(ctx context.Context, id string, payload EventPayload) (*CommunityEvent, error) {
	var event CommunityEvent
	if err := g.do(ctx, http.MethodPut, "/community-events/"+url.PathEscape(id), nil, payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (g *Gateway) DeleteCommunityEvent(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/community-events/"+url.PathEscape(id), nil, nil, nil)
}

func (g *Gateway) JoinCommunityEvent(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodPost, "/community-events/"+url.PathEscape(id)+"/join", nil, nil, nil)
}

func (g *Gateway) LeaveCommunityEvent(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodPost, "/community-events/"+url.PathEscape(id)+"/leave", nil, nil, nil)
}

func (g *Gateway) UserEvents(ctx context.Context) ([]CommunityEvent, error) {
	var events []CommunityEvent
	if err := g.do(ctx, http.MethodGet, "/community-events/user/events", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (g *Gateway) TomorrowEventCount(ctx context.Context) (int, error) {
	var payload struct {
		Count int `json:"count"`
	}
	if err := g.do(ctx, http.MethodGet, "/community-events/tomorrow/count", nil, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

func (g *Gateway) TomorrowEvents(ctx context.Context) ([]CommunityEvent, error) {
	var events []CommunityEvent
	if err := g.do(ctx, http.MethodGet, "/community-events/tomorrow/events", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (g *Gateway) ListEducationMaterials(ctx context.Context) ([]EducationMaterial, error) {
	var materials []EducationMaterial
	if err := g.do(ctx, http.MethodGet, "/education-materials", nil, nil, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

func (g *Gateway) CreateEducationMaterial(ctx context.Context, payload MaterialPayload) (*EducationMaterial, error) {
	var material EducationMaterial
	if err := g.do(ctx, http.MethodPost, "/education-materials", nil, payload, &material); err != nil {
		return nil, err
	}
	return &material, nil
}

func (g *Gateway) UpdateEducationMaterial(ctx context.Context, id string, payload MaterialPayload) (*EducationMaterial, error) {
	var material EducationMaterial
	if err := g.do(ctx, http.MethodPut, "/education-materials/"+url.PathEscape(id), nil, payload, &material); err != nil {
		return nil, err
	}
	return &material, nil
}

func (g *Gateway) DeleteEducationMaterial(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/education-materials/"+url.PathEscape(id), nil, nil, nil)
}

func (g *Gateway) BookmarkMaterial(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodPost, "/education-materials/"+url.PathEscape(id)+"/bookmark", nil, nil, nil)
}

func (g *Gateway) UserBookmarks(ctx context.Context) ([]EducationMaterial, error) {
	var materials []EducationMaterial
	if err := g.do(ctx, http.MethodGet, "/education-materials/user/bookmarks", nil, nil, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

func (g *Gateway) RateMaterial(ctx context.Context, id string, rating int) error {
	body := map[string]int{"rating": rating}
	return g.do(ctx, http.MethodPost, "/education-materials/"+url.PathEscape(id)+"/rate", nil, body, nil)
}

func (g *Gateway) CreateBooking(ctx context.Context, booking Booking) (*Booking, error) {
	var created Booking
	if err := g.do(ctx, http.MethodPost, "/bookings", nil, booking, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (g *Gateway) ListCompanyBookings(ctx context.Context, companyID string) ([]Booking, error) {
	var bookings []Booking
	if err := g.do(ctx, http.MethodGet, "/bookings/company/"+url.PathEscape(companyID), nil, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (g *Gateway) ApproveBooking(ctx context.Context, id string, payload ApprovalPayload) (*Booking, error) {
	var booking Booking
	if err := g.do(ctx, http.MethodPost, "/bookings/"+url.PathEscape(id)+"/approve", nil, payload, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
