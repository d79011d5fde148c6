package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancadosucesso/storefront-backend/api/responses"
	"github.com/bancadosucesso/storefront-backend/api/validators"
	productsvc "github.com/bancadosucesso/storefront-backend/internal/products"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

type createProductRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=200"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      *string         `json:"image_url,omitempty"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	SubcategoryID *uuid.UUID      `json:"subcategory_id,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	IsFeatured    bool            `json:"is_featured"`
	IsActive      *bool           `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	SubcategoryID *uuid.UUID       `json:"subcategory_id,omitempty"`
	Tags          *[]string        `json:"tags,omitempty"`
	IsFeatured    *bool            `json:"is_featured,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// AdminListProducts lists the catalog for the back office, hidden rows
// included.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filter, err := productFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.IncludeHidden = true

		params := pagination.FromQuery(r.URL.Query())
		rows, page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productListResponse{Products: rows, Pagination: page})
	}
}

func AdminGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if body.IsActive != nil {
			active = *body.IsActive
		}

		product, err := svc.Create(r.Context(), productsvc.CreateProductInput{
			Name:          body.Name,
			Description:   body.Description,
			Price:         body.Price,
			ImageURL:      body.ImageURL,
			CategoryID:    body.CategoryID,
			SubcategoryID: body.SubcategoryID,
			Tags:          body.Tags,
			IsFeatured:    body.IsFeatured,
			IsActive:      active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductInput{
			Name:          body.Name,
			Description:   body.Description,
			Price:         body.Price,
			ImageURL:      body.ImageURL,
			CategoryID:    body.CategoryID,
			SubcategoryID: body.SubcategoryID,
			Tags:          body.Tags,
			IsFeatured:    body.IsFeatured,
			IsActive:      body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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
