package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/safetyshop-backend/api/responses"
	"github.com/angelmondragon/safetyshop-backend/pkg/config"
	"github.com/angelmondragon/safetyshop-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/safetyshop-backend/pkg/errors"
	"github.com/angelmondragon/safetyshop-backend/pkg/logger"
	"github.com/angelmondragon/safetyshop-backend/pkg/redis"
)

const (
	envHeader    = "X-SafetyShop-Env"
	readyTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger db.Pinger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{}
		var failed error

		if dbPinger != nil {
			if err := dbPinger.Ping(ctx); err != nil {
				checks["database"] = "down"
				failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable")
			} else {
				checks["database"] = "ok"
			}
		}
		if redisPinger != nil {
			if err := redisPinger.Ping(ctx); err != nil {
				checks["redis"] = "down"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable")
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		if failed != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.As(failed).WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
