package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

// Logging emits one line per request once the handler has finished. The
// route field is the chi pattern so ids do not explode log cardinality.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newResponseRecorder(w, false)
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			r = r.WithContext(ctx)

			next.ServeHTTP(rec, r)

			fields := map[string]any{
				"status":      rec.Status(),
				"bytes":       rec.written,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					fields["route"] = pattern
				}
			}
			done := logg.WithFields(ctx, fields)
			if rec.Status() >= http.StatusInternalServerError {
				logg.Warn(done, "request.failed")
				return
			}
			logg.Info(done, "request.complete")
		})
	}
}
