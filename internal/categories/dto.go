package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
)

// SubcategoryDTO is the API-facing subcategory shape.
type SubcategoryDTO struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CategoryDTO is the API-facing category shape.
type CategoryDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Position      int              `json:"position"`
	Subcategories []SubcategoryDTO `json:"subcategories"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ToDTO converts the persistence model to the API shape.
func ToDTO(category *models.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	subcategories := make([]SubcategoryDTO, 0, len(category.Subcategories))
	for _, sub := range category.Subcategories {
		subcategories = append(subcategories, SubcategoryDTO{
			ID:         sub.ID,
			CategoryID: sub.CategoryID,
			Name:       sub.Name,
			Slug:       sub.Slug,
			CreatedAt:  sub.CreatedAt,
			UpdatedAt:  sub.UpdatedAt,
		})
	}
	return &CategoryDTO{
		ID:            category.ID,
		Name:          category.Name,
		Slug:          category.Slug,
		Position:      category.Position,
		Subcategories: subcategories,
		CreatedAt:     category.CreatedAt,
		UpdatedAt:     category.UpdatedAt,
	}
}

// ToDTOs converts a slice of category models.
func ToDTOs(rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
