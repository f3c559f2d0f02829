package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/fooddash-backend/api/responses"
	"github.com/angelmondragon/fooddash-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck names one dependency probed by /health/ready.
type ReadinessCheck struct {
	Name string
	Ping func(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FoodDash-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports 503 on the first failure.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FoodDash-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for _, check := range checks {
			if check.Ping == nil {
				continue
			}
			if err := check.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable").
					WithDetails(map[string]any{"dependency": check.Name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
