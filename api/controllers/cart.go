package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/api/middleware"
	"github.com/bancadosucesso/storefront-backend/api/responses"
	"github.com/bancadosucesso/storefront-backend/api/validators"
	cartsvc "github.com/bancadosucesso/storefront-backend/internal/cart"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartGet serves the current snapshot of the shopper's cart.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartKey, ok := requireCart(svc, logg, w, r)
		if !ok {
			return
		}

		snap, err := svc.Get(r.Context(), cartKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snap)
	}
}

// CartAddItem adds one unit of a product, creating the line or bumping its
// quantity.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartKey, ok := requireCart(svc, logg, w, r)
		if !ok {
			return
		}

		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.AddItem(r.Context(), cartKey, body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snap)
	}
}

// CartSetQuantity sets a line's quantity. Zero or negative removes the line.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartKey, ok := requireCart(svc, logg, w, r)
		if !ok {
			return
		}

		productID, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.SetQuantity(r.Context(), cartKey, productID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snap)
	}
}

// CartRemoveItem removes a line. Removing an absent product is a no-op.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartKey, ok := requireCart(svc, logg, w, r)
		if !ok {
			return
		}

		productID, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.RemoveItem(r.Context(), cartKey, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snap)
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartKey, ok := requireCart(svc, logg, w, r)
		if !ok {
			return
		}

		snap, err := svc.Clear(r.Context(), cartKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snap)
	}
}

func requireCart(svc cartsvc.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request) (string, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return "", false
	}
	cartKey := middleware.CartKeyFromContext(r.Context())
	if cartKey == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing cart key"))
		return "", false
	}
	return cartKey, true
}
