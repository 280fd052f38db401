package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/pharmatrack/pharmatrack-backend/api/responses"
	"github.com/pharmatrack/pharmatrack-backend/pkg/config"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
	"github.com/pharmatrack/pharmatrack-backend/pkg/redis"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pharmatrack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pharmatrack-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := []struct {
			name   string
			pinger interface {
				Ping(ctx context.Context) error
			}
		}{
			{name: "database", pinger: dbP},
			{name: "redis", pinger: redisP},
		}

		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
