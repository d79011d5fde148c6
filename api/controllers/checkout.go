package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/api/middleware"
	"github.com/bancadosucesso/storefront-backend/api/responses"
	"github.com/bancadosucesso/storefront-backend/api/validators"
	checkoutsvc "github.com/bancadosucesso/storefront-backend/internal/checkout"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName  string     `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string     `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone string     `json:"customer_phone" validate:"required,min=10,max=20"`
	SalespersonID *uuid.UUID `json:"salesperson_id,omitempty"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// CheckoutSubmit verifies the cart against the catalog and produces the order
// artifact.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		cartKey := middleware.CartKeyFromContext(r.Context())
		if cartKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing cart key"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artifact, err := svc.Submit(r.Context(), cartKey, checkoutsvc.SubmitInput{
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
			CustomerPhone: body.CustomerPhone,
			SalespersonID: body.SalespersonID,
			Notes:         body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, artifact)
	}
}
