package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/config"
)

// CORS builds the cross-origin policy for the browser front end. It returns
// nil when no origin is configured.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowedOrigins) == 0 {
		return nil
	}
	cc := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Accept", "Content-Type", "X-Requested-With", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			// A credentialed request cannot use the literal wildcard, so every
			// origin is echoed back instead.
			cc.AllowOriginFunc = func(string) bool { return true }
			return cors.New(cc)
		}
	}
	cc.AllowOrigins = cfg.AllowedOrigins
	return cors.New(cc)
}
