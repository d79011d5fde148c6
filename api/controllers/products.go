package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/api/responses"
	productsvc "github.com/bancadosucesso/storefront-backend/internal/products"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

type productListResponse struct {
	Products   []productsvc.ProductDTO `json:"products"`
	Pagination pagination.Page         `json:"pagination"`
}

// ListProducts serves the public catalog. Hidden products never appear here.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		params := pagination.FromQuery(r.URL.Query())
		rows, page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productListResponse{Products: rows, Pagination: page})
	}
}

// GetProduct serves a single public product by id.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

func productFilterFromQuery(r *http.Request) (productsvc.ListFilter, error) {
	filter := productsvc.ListFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid category id")
		}
		filter.CategoryID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("subcategory_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid subcategory id")
		}
		filter.SubcategoryID = &id
	}
	if r.URL.Query().Get("featured") == "true" {
		filter.FeaturedOnly = true
	}

	return filter, nil
}
