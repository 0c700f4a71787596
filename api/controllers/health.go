package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/farmdirect/farmdirect-backend/api/responses"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FarmDirect-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every backing dependency and reports which ones are
// down. Failures are combined so one broken dependency does not mask
// another.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FarmDirect-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var combined error
		failing := []string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				combined = multierr.Append(combined, err)
				failing = append(failing, name)
			}
		}

		if combined != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "readiness check failed").
					WithDetails(map[string]any{"failing": failing}))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
