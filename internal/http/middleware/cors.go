package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/pricelab/internal/config"
)

// exposedHeaders are readable by browser clients so they can keep their
// session and correlate logs.
var exposedHeaders = []string{SessionHeader, "X-Trace-Id", "X-Request-Id"}

// CORS handles Cross-Origin Resource Sharing using github.com/rs/cors.
// A nil config disables it.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return c.Handler
}
