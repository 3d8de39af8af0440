package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/openstudio/register-gateway/pkg/config"
)

// CORS returns middleware that applies the gateway's allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Register-Session", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Register-Session"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
