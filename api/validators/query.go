package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter bounded by
// [lo, hi]; a missing value yields fallback.
func ParseQueryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, invalidParam(key, "query parameter must be an integer", nil)
	case n < lo || n > hi:
		return 0, invalidParam(key, "query parameter out of range", map[string]any{"min": lo, "max": hi})
	}
	return n, nil
}

// ParseUUIDParam reads a chi URL parameter as a UUID.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, invalidParam(key, "path parameter required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidParam(key, "invalid id", nil)
	}
	return id, nil
}

func invalidParam(key, msg string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}
