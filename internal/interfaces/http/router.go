// Package http assembles the gin engine and the HTTP server of the API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/config"
	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/handlers"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree. Nil handlers leave their routes unmounted.
type RouterConfig struct {
	// Handlers
	AuthHandler   *handlers.AuthHandler
	CaseHandler   *handlers.CaseHandler
	FilingHandler *handlers.FilingHandler
	HealthHandler *handlers.HealthHandler

	// Middleware
	Sessions    *middleware.SessionMiddleware
	CORS        config.CORSConfig
	LoginLimit  middleware.RateLimitConfig
	MaxBodySize int64
	Logging     middleware.LoggingConfig

	// Infrastructure
	Logger         logging.Logger
	HTTPMetrics    middleware.HTTPRecorder
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter builds the gin engine: global middleware, public auth and probe
// routes, the session-guarded API and the admin-only filing routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	// --- Global middleware ---
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	}
	if cfg.HTTPMetrics != nil {
		r.Use(middleware.Metrics(cfg.HTTPMetrics))
	}
	if h := middleware.CORS(cfg.CORS); h != nil {
		r.Use(h)
	}
	r.Use(middleware.BodyLimit(cfg.MaxBodySize))

	// --- Probes and scrape endpoint ---
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Readiness)
		r.GET("/healthz", cfg.HealthHandler.Liveness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	// --- Public auth ---
	if cfg.AuthHandler != nil {
		r.POST("/api/login", middleware.RateLimit(cfg.LoginLimit), cfg.AuthHandler.Login)
		r.POST("/api/logout", cfg.AuthHandler.Logout)
	}

	if cfg.Sessions == nil {
		return r
	}

	// --- Session-guarded API ---
	api := r.Group("/api", cfg.Sessions.RequireSession())
	if cfg.AuthHandler != nil {
		api.GET("/me", cfg.AuthHandler.Me)
	}
	registerCaseRoutes(api, cfg.CaseHandler)

	// --- Admin-only filings ---
	registerFilingRoutes(r, api, cfg.Sessions, cfg.FilingHandler)
	return r
}

func registerCaseRoutes(api *gin.RouterGroup, h *handlers.CaseHandler) {
	if h == nil {
		return
	}
	api.POST("/obtener_por_ppus", h.GetByNumbers)
	api.POST("/actualizar_caso", h.Update)
	api.GET("/historial", h.History)
	api.GET("/registros", h.ListNumbers)
	api.GET("/get_registros", h.ListNumbers)
	api.GET("/get_plazos", h.Deadlines)
	api.GET("/buscar", h.Search)
	api.GET("/years", h.Years)
	api.POST("/generar_registro_consulta", middleware.RequireRole(user.RoleAdmin), h.NextConsultation)
}

func registerFilingRoutes(r *gin.Engine, api *gin.RouterGroup, sessions *middleware.SessionMiddleware, h *handlers.FilingHandler) {
	if h == nil {
		return
	}
	api.GET("/descargar_pdf", h.Download)

	admin := middleware.RequireRole(user.RoleAdmin)
	r.POST("/upload", sessions.RequireSession(), admin, h.Upload)
	api.POST("/eliminar_pdfs_por_registro", admin, h.DeleteByNumber)
	api.POST("/limpiar_pdfs_por_registros", admin, h.CleanByNumbers)
}
