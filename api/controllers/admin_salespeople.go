package controllers

import (
	"net/http"

	"github.com/bancadosucesso/storefront-backend/api/responses"
	"github.com/bancadosucesso/storefront-backend/api/validators"
	salessvc "github.com/bancadosucesso/storefront-backend/internal/salespeople"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
)

type createSalespersonRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=10,max=20"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type updateSalespersonRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=10,max=20"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// AdminListSalespeople lists the full roster, inactive entries included.
func AdminListSalespeople(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "salesperson service unavailable"))
			return
		}

		rows, err := svc.List(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"salespeople": rows})
	}
}

func AdminCreateSalesperson(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "salesperson service unavailable"))
			return
		}

		var body createSalespersonRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if body.IsActive != nil {
			active = *body.IsActive
		}

		salesperson, err := svc.Create(r.Context(), salessvc.CreateSalespersonInput{
			Name:     body.Name,
			Phone:    body.Phone,
			IsActive: active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, salesperson)
	}
}

func AdminUpdateSalesperson(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "salesperson service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSalespersonRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		salesperson, err := svc.Update(r.Context(), id, salessvc.UpdateSalespersonInput{
			Name:     body.Name,
			Phone:    body.Phone,
			IsActive: body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, salesperson)
	}
}

func AdminDeleteSalesperson(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "salesperson service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
