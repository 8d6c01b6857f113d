package controllers

import (
	"context"
	"net/http"

	"github.com/stockbar/stockbar-backend/api/responses"
	"github.com/stockbar/stockbar-backend/pkg/config"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
	"github.com/stockbar/stockbar-backend/pkg/logger"
)

// Pinger is the health-check surface of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockbar-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every wired dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockbar-Env", cfg.App.Env)

		status := map[string]string{}
		healthy := true
		check := func(name string, dep Pinger) {
			if dep == nil {
				return
			}
			if err := dep.Ping(r.Context()); err != nil {
				healthy = false
				status[name] = "down"
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "health.dependency_down", err)
				}
				return
			}
			status[name] = "up"
		}
		check("database", dbP)
		check("redis", redisP)

		if !healthy {
			responses.WriteError(r.Context(), nil, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": status})
	}
}
