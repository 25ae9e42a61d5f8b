package controllers

import (
	"net/http"

	"github.com/sahulatbazaar/sahulat-backend/api/responses"
	"github.com/sahulatbazaar/sahulat-backend/pkg/config"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
	"github.com/sahulatbazaar/sahulat-backend/pkg/logger"
	"github.com/sahulatbazaar/sahulat-backend/pkg/wallet"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Sahulat-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady also probes the payment gateway, the only external
// collaborator this process depends on.
func HealthReady(cfg *config.Config, logg *logger.Logger, gateway wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Sahulat-Env", cfg.App.Env)
		if gateway != nil {
			if _, err := gateway.WalletBalance(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
