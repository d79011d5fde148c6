package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
)

// ProductDTO is the API-facing product shape.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      *string         `json:"image_url,omitempty"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	SubcategoryID *uuid.UUID      `json:"subcategory_id,omitempty"`
	Tags          []string        `json:"tags"`
	IsFeatured    bool            `json:"is_featured"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToDTO converts the persistence model to the API shape.
func ToDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	tags := make([]string, len(product.Tags))
	copy(tags, product.Tags)
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		ImageURL:      product.ImageURL,
		CategoryID:    product.CategoryID,
		SubcategoryID: product.SubcategoryID,
		Tags:          tags,
		IsFeatured:    product.IsFeatured,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// ToDTOs converts a slice of models.
func ToDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
