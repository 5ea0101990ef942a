package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	adminCookieName       = "ecollect_admin_session"
	adminSessionDuration  = 8 * time.Hour
	adminRoleAdmin        = "admin"
	outboundClientTimeout = 10 * time.Second
)

type Config struct {
	Addr           string `env:"ADMIN_ADDR" envDefault:":8080"`
	Env            string `env:"APP_ENV" envDefault:"development"`
	SigningSecret  string `env:"APP_SIGNING_SECRET"`
	BackendBaseURL string `env:"BACKEND_BASE_URL"`
	PublicHost     string `env:"PUBLIC_HOST"`
	StateDBPath    string `env:"STATE_DB_PATH" envDefault:"ecollect-admin.db"`
	NoticeSeconds  int    `env:"NOTICE_TIMEOUT_SECONDS" envDefault:"4"`
}

// AdminSession identifies a logged-in dashboard operator. SessionID keys the
// per-session screen state.
type AdminSession struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

type App struct {
	cfg     *Config
	log     *slog.Logger
	store   *stateStore
	gateway *Gateway
	notices *noticeCenter

	adminTemplates *adminTemplateRenderer
	companyWizards *companyWizardStore

	userScreens     *screenRegistry[User]
	companyScreens  *screenRegistry[Company]
	bookingScreens  *screenRegistry[Booking]
	eventScreens    *screenRegistry[CommunityEvent]
	materialScreens *screenRegistry[EducationMaterial]

	// test hooks; main() wires these to the gateway
	backendLogin func(ctx context.Context, email, password string) (*LoginResult, error)

	listUsers  func(ctx context.Context) ([]User, error)
	createUser func(ctx context.Context, payload UserPayload) (*User, error)
	updateUser func(ctx context.Context, id string, payload UserPayload) (*User, error)
	deleteUser func(ctx context.Context, id string) error
	usersPDF   func(ctx context.Context) ([]byte, string, error)

	listCompanies   func(ctx context.Context) ([]Company, error)
	registerCompany func(ctx context.Context, payload CompanyPayload) (*Company, error)
	updateCompany   func(ctx context.Context, id string, payload CompanyPayload) (*Company, error)
	deleteCompany   func(ctx context.Context, id string) error

	listCompanyBookings func(ctx context.Context, companyID string) ([]Booking, error)
	approveBooking      func(ctx context.Context, id string, payload ApprovalPayload) (*Booking, error)

	listEvents         func(ctx context.Context) ([]CommunityEvent, error)
	createEvent        func(ctx context.Context, payload EventPayload) (*CommunityEvent, error)
	updateEvent        func(ctx context.Context, id string, payload EventPayload) (*CommunityEvent, error)
	deleteEvent        func(ctx context.Context, id string) error
	tomorrowEventCount func(ctx context.Context) (int, error)

	listMaterials  func(ctx context.Context) ([]EducationMaterial, error)
	createMaterial func(ctx context.Context, payload MaterialPayload) (*EducationMaterial, error)
	updateMaterial func(ctx context.Context, id string, payload MaterialPayload) (*EducationMaterial, error)
	deleteMaterial func(ctx context.Context, id string) error
}

type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string { return e.Message }

func writeAPIError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Code, "message": apiErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, err := openStateStore(cfg.StateDBPath)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	gateway := &Gateway{
		Client:          &http.Client{Timeout: outboundClientTimeout},
		Credentials:     store,
		BaseURLOverride: cfg.BackendBaseURL,
		PublicHost:      cfg.PublicHost,
	}

	app := newApp(cfg, logger, store, gateway)

	logger.Info("runtime configuration", "env", cfg.Env, "addr", cfg.Addr, "backend", gateway.baseURL())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(app.loggingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	app.registerAdminRoutes(r)

	app.log.Info("starting admin dashboard", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		panic(err)
	}
}

func newApp(cfg *Config, logger *slog.Logger, store *stateStore, gateway *Gateway) *App {
	app := &App{
		cfg:            cfg,
		log:            logger,
		store:          store,
		gateway:        gateway,
		notices:        newNoticeCenter(time.Duration(cfg.NoticeSeconds) * time.Second),
		adminTemplates: newAdminTemplateRenderer(cfg.Env),
		companyWizards: newCompanyWizardStore(),

		userScreens: newScreenRegistry(adminDefaultPerPage,
			matchAnyField(
				func(u User) string { return u.FullName },
				func(u User) string { return u.Email },
				func(u User) string { return u.Phone },
				func(u User) string { return u.District },
			),
			func(u User) string { return u.ID },
		),
		companyScreens: newScreenRegistry(adminDefaultPerPage,
			matchAnyField(
				func(co Company) string { return co.Name },
				func(co Company) string { return co.Email },
				func(co Company) string { return co.District },
				func(co Company) string { return co.Sector },
			),
			func(co Company) string { return co.ID },
		),
		bookingScreens: newScreenRegistry(adminDefaultPerPage,
			matchAnyField(
				func(b Booking) string { return b.Status },
				func(b Booking) string { return strings.Join(b.WasteTypes, " ") },
				func(b Booking) string { return b.PickupDate },
			),
			func(b Booking) string { return b.ID },
		),
		eventScreens: newScreenRegistry(adminDefaultPerPage,
			matchAnyField(
				func(e CommunityEvent) string { return e.Title },
				func(e CommunityEvent) string { return e.District },
				func(e CommunityEvent) string { return e.Sector },
			),
			func(e CommunityEvent) string { return e.ID },
		),
		materialScreens: newScreenRegistry(adminDefaultPerPage,
			matchAnyField(
				func(m EducationMaterial) string { return m.Title },
				func(m EducationMaterial) string { return m.Category },
			),
			func(m EducationMaterial) string { return m.ID },
		),
	}

	app.backendLogin = gateway.Login

	app.listUsers = gateway.ListUsers
	app.createUser = gateway.CreateUser
	app.updateUser = gateway.UpdateUser
	app.deleteUser = gateway.DeleteUser
	app.usersPDF = gateway.UsersPDF

	app.listCompanies = gateway.ListCompanies
	app.registerCompany = gateway.RegisterCompany
	app.updateCompany = gateway.UpdateCompany
	app.deleteCompany = gateway.DeleteCompany

	app.listCompanyBookings = gateway.ListCompanyBookings
	app.approveBooking = gateway.ApproveBooking

	app.listEvents = gateway.ListCommunityEvents
	app.createEvent = gateway.CreateCommunityEvent
	app.updateEvent = gateway.UpdateCommunityEvent
	app.deleteEvent = gateway.DeleteCommunityEvent
	app.tomorrowEventCount = gateway.TomorrowEventCount

	app.listMaterials = gateway.ListEducationMaterials
	app.createMaterial = gateway.CreateEducationMaterial
	app.updateMaterial = gateway.UpdateEducationMaterial
	app.deleteMaterial = gateway.DeleteEducationMaterial

	return app
}

func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(cfg.SigningSecret)) < 16 {
		return nil, fmt.Errorf("APP_SIGNING_SECRET must be at least 16 characters")
	}
	if cfg.NoticeSeconds < 1 {
		return nil, fmt.Errorf("NOTICE_TIMEOUT_SECONDS must be >= 1")
	}
	return cfg, nil
}

func (a *App) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}
