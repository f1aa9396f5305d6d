package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/thescentlab/scentlab-backend/api/responses"
	"github.com/thescentlab/scentlab-backend/pkg/config"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
)

const readyCheckTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ScentLab-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the backing stores respond before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbClient, redisClient pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ScentLab-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false

		if dbClient != nil {
			if err := dbClient.Ping(ctx); err != nil {
				checks["database"] = "down"
				failed = true
			} else {
				checks["database"] = "up"
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx); err != nil {
				checks["redis"] = "down"
				failed = true
			} else {
				checks["redis"] = "up"
			}
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
					WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
