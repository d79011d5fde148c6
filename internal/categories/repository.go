package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
)

// Repository wires together category persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns every category ordered by display position, with its
// subcategories preloaded. The catalog is small enough that pagination would
// only complicate the storefront menu.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Order("position ASC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single category with its subcategories.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories").
		First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindBySlug loads a single category by its URL slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories").
		First(&category, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category row.
func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Update saves the full category row.
func (r *Repository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes the category row. Subcategories cascade at the database
// level; products keep their rows with the category reference nulled.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateSubcategory inserts a subcategory under an existing category.
func (r *Repository) CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error) {
	if err := r.db.WithContext(ctx).Create(subcategory).Error; err != nil {
		return nil, err
	}
	return subcategory, nil
}

// DeleteSubcategory removes a subcategory from its category.
func (r *Repository) DeleteSubcategory(ctx context.Context, categoryID, subcategoryID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.Subcategory{}, "id = ? AND category_id = ?", subcategoryID, categoryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
