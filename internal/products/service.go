package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

// Service exposes catalog read paths and back-office product management.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]ProductDTO, pagination.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	ImageURL      *string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	Tags          []string
	IsFeatured    bool
	IsActive      bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	ImageURL      *string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	Tags          *[]string
	IsFeatured    *bool
	IsActive      *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]ProductDTO, pagination.Page, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return ToDTOs(rows), params.BuildPage(total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return ToDTO(product), nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductFields(input.Name, input.Price); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		ImageURL:      input.ImageURL,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		Tags:          pq.StringArray(input.Tags),
		IsFeatured:    input.IsFeatured,
		IsActive:      input.IsActive,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return ToDTO(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.SubcategoryID != nil {
		product.SubcategoryID = input.SubcategoryID
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(*input.Tags)
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := validateProductFields(product.Name, product.Price); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return ToDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func validateProductFields(name string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}
	return nil
}
