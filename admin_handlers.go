package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func (a *App) registerAdminRoutes(r *gin.Engine) {
	staticFS, err := adminStaticFileSystem(a.cfg.Env)
	if err != nil {
		panic(err)
	}
	r.StaticFS("/ecoadmin/static", staticFS)

	r.GET("/ecoadmin/login", a.adminLoginPageHandler)
	r.POST("/ecoadmin/login", a.adminLoginSubmitHandler)
	r.POST("/ecoadmin/logout", a.adminLogoutSubmitHandler)

	admin := r.Group("/ecoadmin")
	admin.Use(a.requireAdminSessionHTML())
	{
		admin.GET("", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/ecoadmin/users") })
		admin.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/ecoadmin/users") })

		admin.GET("/users", a.adminUsersPageHandler)
		admin.POST("/users/create", a.adminUserCreateSubmitHandler)
		admin.POST("/users/:id/edit", a.adminUserEditSubmitHandler)
		admin.POST("/users/:id/delete", a.adminUserDeleteSubmitHandler)
		admin.GET("/users/export.pdf", a.adminUsersPDFHandler)

		admin.GET("/companies", a.adminCompaniesPageHandler)
		admin.GET("/companies/register", a.adminCompanyRegisterPageHandler)
		admin.POST("/companies/register", a.adminCompanyRegisterSubmitHandler)
		admin.POST("/companies/:id/edit", a.adminCompanyEditSubmitHandler)
		admin.POST("/companies/:id/delete", a.adminCompanyDeleteSubmitHandler)

		admin.GET("/companies/:id/bookings", a.adminBookingsPageHandler)
		admin.GET("/companies/:id/bookings/export.pdf", a.adminBookingsPDFHandler)
		admin.POST("/companies/:id/bookings/:bookingID/approve", a.adminBookingApproveSubmitHandler)

		admin.GET("/events", a.adminEventsPageHandler)
		admin.POST("/events/create", a.adminEventCreateSubmitHandler)
		admin.POST("/events/:id/edit", a.adminEventEditSubmitHandler)
		admin.POST("/events/:id/delete", a.adminEventDeleteSubmitHandler)

		admin.GET("/materials", a.adminMaterialsPageHandler)
		admin.POST("/materials/create", a.adminMaterialCreateSubmitHandler)
		admin.POST("/materials/:id/edit", a.adminMaterialEditSubmitHandler)
		admin.POST("/materials/:id/delete", a.adminMaterialDeleteSubmitHandler)

		admin.GET("/locations/districts", a.locationDistrictsHandler)
		admin.GET("/locations/sectors", a.locationSectorsHandler)
		admin.GET("/locations/cells", a.locationCellsHandler)
		admin.GET("/locations/villages", a.locationVillagesHandler)

		admin.POST("/preferences/back-nav", a.adminBackNavSubmitHandler)
		admin.POST("/notices/:noticeID/dismiss", a.adminNoticeDismissHandler)
	}
}

func (a *App) createAdminSessionToken(session AdminSession) (string, error) {
	claims := jwt.MapClaims{
		"sid":   session.SessionID,
		"email": session.Email,
		"name":  session.Name,
		"role":  session.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(adminSessionDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.SigningSecret))
}

func (a *App) verifyAdminSessionToken(tokenString string) (*AdminSession, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(a.cfg.SigningSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	sid, _ := claims["sid"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if sid == "" || email == "" {
		return nil, fmt.Errorf("invalid session payload")
	}
	return &AdminSession{SessionID: sid, Email: email, Name: name, Role: role}, nil
}

func (a *App) requireAdminSessionHTML() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookieName)
		if err != nil {
			next := sanitizeAdminRedirectTarget(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, "/ecoadmin/login?next="+url.QueryEscape(next))
			c.Abort()
			return
		}
		session, err := a.verifyAdminSessionToken(token)
		if err != nil {
			next := sanitizeAdminRedirectTarget(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, "/ecoadmin/login?next="+url.QueryEscape(next))
			c.Abort()
			return
		}
		if session.Role != adminRoleAdmin {
			a.renderAccessDenied(c, *session)
			c.Abort()
			return
		}
		c.Set("adminSession", *session)
		c.Next()
	}
}

func getAdminSession(c *gin.Context) (AdminSession, error) {
	value, ok := c.Get("adminSession")
	if !ok {
		return AdminSession{}, fmt.Errorf("missing session")
	}
	session, ok := value.(AdminSession)
	if !ok {
		return AdminSession{}, fmt.Errorf("invalid session")
	}
	return session, nil
}

func (a *App) adminLoginPageHandler(c *gin.Context) {
	if token, err := c.Cookie(adminCookieName); err == nil {
		if _, verifyErr := a.verifyAdminSessionToken(token); verifyErr == nil {
			c.Redirect(http.StatusSeeOther, "/ecoadmin")
			return
		}
	}

	next := sanitizeAdminRedirectTarget(c.Query("next"))
	base := a.adminBaseData(c, "Sign in", "")
	a.renderAdminTemplate(c, http.StatusOK, "templates/admin/login.tmpl", adminLoginViewData{
		adminBaseViewData: base,
		Email:             "",
		Next:              next,
	})
}

func (a *App) adminLoginSubmitHandler(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	next := sanitizeAdminRedirectTarget(c.PostForm("next"))

	renderFailure := func(status int, message string) {
		base := a.adminBaseData(c, "Sign in", "")
		base.ErrorMessage = message
		a.renderAdminTemplate(c, status, "templates/admin/login.tmpl", adminLoginViewData{
			adminBaseViewData: base,
			Email:             email,
			Next:              next,
		})
	}

	if email == "" || password == "" {
		renderFailure(http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := a.backendLogin(c.Request.Context(), email, password)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			if apiErr.Status == http.StatusUnauthorized {
				renderFailure(http.StatusUnauthorized, "Invalid email or password")
				return
			}
			if strings.TrimSpace(apiErr.Message) != "" {
				renderFailure(apiErr.Status, apiErr.Message)
				return
			}
		}
		renderFailure(http.StatusBadGateway, "Sign in failed, please try again")
		return
	}

	if result.Role != adminRoleAdmin {
		session := AdminSession{Email: email, Name: result.Name, Role: result.Role}
		a.renderAccessDenied(c, session)
		return
	}

	if err := a.store.SetToken(c.Request.Context(), result.Token); err != nil {
		renderFailure(http.StatusInternalServerError, "Sign in failed, please try again")
		return
	}

	session := AdminSession{
		SessionID: uuid.NewString(),
		Email:     email,
		Name:      result.Name,
		Role:      result.Role,
	}
	token, err := a.createAdminSessionToken(session)
	if err != nil {
		renderFailure(http.StatusInternalServerError, "Sign in failed, please try again")
		return
	}

	secure := strings.EqualFold(a.cfg.Env, "production")
	c.SetCookie(adminCookieName, token, int(adminSessionDuration.Seconds()), "/", "", secure, true)
	c.Redirect(http.StatusSeeOther, next)
}

func (a *App) adminLogoutSubmitHandler(c *gin.Context) {
	if token, err := c.Cookie(adminCookieName); err == nil {
		if session, verifyErr := a.verifyAdminSessionToken(token); verifyErr == nil {
			a.dropSessionScreens(session.SessionID)
		}
	}
	if err := a.store.ClearToken(c.Request.Context()); err != nil {
		a.log.Error("clear token on logout failed", "err", err)
	}
	secure := strings.EqualFold(a.cfg.Env, "production")
	c.SetCookie(adminCookieName, "", -1, "/", "", secure, true)
	c.Redirect(http.StatusSeeOther, "/ecoadmin/login")
}

func (a *App) dropSessionScreens(sessionID string) {
	a.userScreens.drop(sessionID)
	a.companyScreens.drop(sessionID)
	a.eventScreens.drop(sessionID)
	a.materialScreens.drop(sessionID)
	a.dropCompanyWizard(sessionID)
	a.dropBookingScreens(sessionID)
}

func (a *App) renderAccessDenied(c *gin.Context, session AdminSession) {
	base := a.adminBaseData(c, "Access denied", "")
	base.Session = &session
	a.renderAdminTemplate(c, http.StatusForbidden, "templates/admin/access_denied.tmpl", adminAccessDeniedViewData{
		adminBaseViewData: base,
	})
}

func (a *App) adminBackNavSubmitHandler(c *gin.Context) {
	show := c.PostForm("show") == "on" || c.PostForm("show") == "true"
	if err := a.store.SetShowBackNav(c.Request.Context(), show); err != nil {
		writeAPIError(c, err)
		return
	}
	redirectAdminWithMessage(c, c.PostForm("next"), "notice", "Preference saved")
}

func (a *App) adminNoticeDismissHandler(c *gin.Context) {
	session, err := getAdminSession(c)
	if err != nil {
		writeAPIError(c, &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Session required"})
		return
	}
	a.notices.Dismiss(session.SessionID, c.Param("noticeID"))
	redirectAdminWithMessage(c, c.PostForm("next"), "", "")
}

func (a *App) renderAdminTemplate(c *gin.Context, status int, contentTemplatePath string, data any) {
	templates, err := a.adminTemplates.templatesForRender(contentTemplatePath)
	if err != nil {
		c.String(http.StatusInternalServerError, "admin template error: %v", err)
		return
	}

	c.Status(status)
	if executeErr := templates.ExecuteTemplate(c.Writer, "layout", data); executeErr != nil {
		a.log.Error("render admin template failed", "error", executeErr)
		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, "render failure")
		}
	}
}

func (a *App) adminBaseData(c *gin.Context, title, activeNav string) adminBaseViewData {
	var session *AdminSession
	sessionKey := ""
	if value, ok := c.Get("adminSession"); ok {
		if stored, castOK := value.(AdminSession); castOK {
			session = &stored
			sessionKey = stored.SessionID
		}
	}

	showBackNav := false
	if flag, err := a.store.ShowBackNav(c.Request.Context()); err == nil {
		showBackNav = flag
	}

	var notices []notice
	if sessionKey != "" {
		notices = a.notices.Active(sessionKey)
	}

	return adminBaseViewData{
		Title:         title,
		Session:       session,
		CurrentPath:   sanitizeAdminRedirectTarget(c.Request.URL.RequestURI()),
		ActiveNav:     activeNav,
		ErrorMessage:  strings.TrimSpace(c.Query("error")),
		NoticeMessage: strings.TrimSpace(c.Query("notice")),
		Notices:       notices,
		NoticeTTL:     a.notices.TTLSeconds(),
		ShowBackNav:   showBackNav,
	}
}

func sanitizeAdminRedirectTarget(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "/ecoadmin"
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "/ecoadmin"
	}
	if parsed.IsAbs() || parsed.Host != "" {
		return "/ecoadmin"
	}
	if strings.HasPrefix(parsed.Path, "//") {
		return "/ecoadmin"
	}
	if !strings.HasPrefix(parsed.Path, "/ecoadmin") {
		return "/ecoadmin"
	}
	if parsed.Path == "/ecoadmin/login" || parsed.Path == "/ecoadmin/logout" {
		return "/ecoadmin"
	}

	target := parsed.Path
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	return target
}

func redirectAdminWithMessage(c *gin.Context, target, key, value string) {
	parsed, err := url.Parse(sanitizeAdminRedirectTarget(target))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/ecoadmin")
		return
	}
	query := parsed.Query()
	query.Del("error")
	query.Del("notice")
	if key != "" && value != "" {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()

	redirectURL := parsed.Path
	if parsed.RawQuery != "" {
		redirectURL += "?" + parsed.RawQuery
	}
	c.Redirect(http.StatusSeeOther, redirectURL)
}
