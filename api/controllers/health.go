package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/openstudio/register-gateway/api/responses"
	"github.com/openstudio/register-gateway/pkg/config"
	pkgerrors "github.com/openstudio/register-gateway/pkg/errors"
	"github.com/openstudio/register-gateway/pkg/logger"
)

// Pinger is the readiness probe a backing dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Register-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Register-Env", cfg.App.Env)

		var err error
		failing := []string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if pingErr := dep.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, pingErr)
				failing = append(failing, name)
			}
		}

		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "readiness check failed").
					WithDetails(map[string]any{"failing": failing}))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
