package controllers

import (
	"net/http"

	"github.com/bancadosucesso/storefront-backend/api/responses"
	salessvc "github.com/bancadosucesso/storefront-backend/internal/salespeople"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
)

// ListSalespeople serves the active roster shown in the checkout form.
func ListSalespeople(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "salesperson service unavailable"))
			return
		}

		rows, err := svc.List(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"salespeople": rows})
	}
}
