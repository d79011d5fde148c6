package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/api/middleware"
	"github.com/bancadosucesso/storefront-backend/api/responses"
	"github.com/bancadosucesso/storefront-backend/api/validators"
	ordersvc "github.com/bancadosucesso/storefront-backend/internal/orders"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

type orderListResponse struct {
	Orders     []ordersvc.OrderDTO `json:"orders"`
	Pagination pagination.Page     `json:"pagination"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=2,max=500"`
}

func AdminListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		filter, err := orderFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.FromQuery(r.URL.Query())
		rows, page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderListResponse{Orders: rows, Pagination: page})
	}
}

func AdminGetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func AdminConfirmOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), id, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func AdminCancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), id, strings.TrimSpace(body.Reason), actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func orderFilterFromQuery(r *http.Request) (ordersvc.ListFilter, error) {
	var filter ordersvc.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("salesperson_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid salesperson id")
		}
		filter.SalespersonID = &id
	}

	return filter, nil
}

func actorFromContext(r *http.Request) *outbox.ActorRef {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return nil
	}
	return &outbox.ActorRef{
		UserID: userID,
		Role:   middleware.RoleFromContext(r.Context()),
	}
}
