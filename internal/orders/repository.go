package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status        *enums.OrderStatus
	SalespersonID *uuid.UUID
}

// Repository wires together order persistence helpers.
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

// NextOrderNumber reserves the next human-facing order number from the
// database sequence.
func (r *Repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var number int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval('order_number_seq')").Scan(&number).Error; err != nil {
		return 0, err
	}
	return number, nil
}

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads a single order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a page of orders plus the total row count for the filter.
// Items are preloaded so the admin view can render line counts.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SalespersonID != nil {
		query = query.Where("salesperson_id = ?", *filter.SalespersonID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit()).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus transitions the order into the given status, stamping the
// matching lifecycle timestamp. Only rows still in fromStatus are touched so
// concurrent transitions cannot double-apply.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus enums.OrderStatus, at time.Time) (int64, error) {
	updates := map[string]any{
		"status":     toStatus,
		"updated_at": at,
	}
	switch toStatus {
	case enums.OrderStatusConfirmed:
		updates["confirmed_at"] = at
	case enums.OrderStatusCanceled:
		updates["canceled_at"] = at
	case enums.OrderStatusExpired:
		updates["expired_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindExpiredPending returns pending orders created before the cutoff.
func (r *Repository) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
