package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

const corsPreflightMaxAge = 300

// CORS allows browser clients from origins. Credentials are only allowed
// for an explicit origin list, never with the "*" wildcard.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyKeyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, IdempotentReplayHeader, "Retry-After"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           corsPreflightMaxAge,
	})
}
