package salespeople

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
)

// Repository wires together salesperson persistence helpers.
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

// FindByID loads a single salesperson row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Salesperson, error) {
	var salesperson models.Salesperson
	if err := r.db.WithContext(ctx).First(&salesperson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &salesperson, nil
}

// List returns salespeople ordered by name. Inactive rows are hidden unless
// includeInactive is set, which only the back office uses.
func (r *Repository) List(ctx context.Context, includeInactive bool) ([]models.Salesperson, error) {
	query := r.db.WithContext(ctx).Model(&models.Salesperson{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Salesperson
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new salesperson row.
func (r *Repository) Create(ctx context.Context, salesperson *models.Salesperson) (*models.Salesperson, error) {
	if err := r.db.WithContext(ctx).Create(salesperson).Error; err != nil {
		return nil, err
	}
	return salesperson, nil
}

// Update saves the full salesperson row.
func (r *Repository) Update(ctx context.Context, salesperson *models.Salesperson) (*models.Salesperson, error) {
	if err := r.db.WithContext(ctx).Save(salesperson).Error; err != nil {
		return nil, err
	}
	return salesperson, nil
}

// Delete removes the salesperson row. Orders crediting them keep the
// reference nulled at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Salesperson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
