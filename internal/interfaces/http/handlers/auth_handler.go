package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/middleware"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// UserDirectory authenticates staff and looks up their profile.
type UserDirectory interface {
	Authenticate(username, password string) (*user.User, error)
	Lookup(username string) (*user.User, bool)
}

// LoginRecorder counts login outcomes.
type LoginRecorder interface {
	RecordLogin(success bool)
}

// CookieConfig shapes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler serves login, logout and the current profile.
type AuthHandler struct {
	dir     UserDirectory
	store   user.SessionStore
	cookie  CookieConfig
	metrics LoginRecorder
	now     func() time.Time
	logger  logging.Logger
}

// NewAuthHandler creates an AuthHandler. metrics may be nil.
func NewAuthHandler(dir UserDirectory, store user.SessionStore, cookie CookieConfig, metrics LoginRecorder, logger logging.Logger) *AuthHandler {
	return &AuthHandler{dir: dir, store: store, cookie: cookie, metrics: metrics, now: time.Now, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Role    user.Role `json:"role"`
}

// MeResponse describes the signed-in user to the front end.
type MeResponse struct {
	Username      string    `json:"username"`
	Role          user.Role `json:"role"`
	AllowedFields []string  `json:"allowedFields"`
	CanEdit       bool      `json:"canEdit"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Usuario y contraseña son requeridos")
		return
	}

	u, err := h.dir.Authenticate(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		h.recordLogin(false)
		h.logger.Warn("login rejected", logging.String("username", req.Username), logging.String("client_ip", c.ClientIP()))
		RespondError(c, h.logger, err)
		return
	}

	sess := user.NewSession(u, h.cookie.TTL, h.now())
	if err := h.store.Create(c.Request.Context(), sess); err != nil {
		h.recordLogin(false)
		RespondError(c, h.logger, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "create session"))
		return
	}
	h.recordLogin(true)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sess.Token, int(h.cookie.TTL/time.Second), "/", "", h.cookie.Secure, true)
	h.logger.Info("user logged in", logging.String("username", u.Username), logging.String("role", string(u.Role)))
	RespondOK(c, loginResponse{Message: "Inicio de sesión exitoso", Role: u.Role})
}

// Logout handles POST /api/logout. It always succeeds and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		if err := h.store.Delete(c.Request.Context(), token); err != nil {
			h.logger.Warn("session delete failed", logging.Err(err))
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	RespondOK(c, MessageResponse{Message: "Cierre de sesión exitoso"})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		RespondError(c, h.logger, errors.Unauthorized("Autenticación requerida"))
		return
	}
	u, ok := h.dir.Lookup(sess.Username)
	if !ok {
		// The user table changed under a live session.
		RespondError(c, h.logger, errors.Unauthorized("Autenticación requerida"))
		return
	}
	RespondOK(c, MeResponse{
		Username:      u.Username,
		Role:          u.Role,
		AllowedFields: user.AllowedFields(u),
		CanEdit:       user.CanEdit(u),
	})
}

func (h *AuthHandler) recordLogin(ok bool) {
	if h.metrics != nil {
		h.metrics.RecordLogin(ok)
	}
}
