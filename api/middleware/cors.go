package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/safetyshop-backend/api/responses"
)

// CORS returns middleware that applies the storefront origin policy.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", responses.RequestIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{responses.RequestIDHeader, "Content-Disposition", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
