package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

// ListFilter narrows the back-office notification listing.
type ListFilter struct {
	UnreadOnly bool
}

// Repository wires together notification persistence helpers.
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

// Create inserts a notification row.
func (r *Repository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// List returns a page of notifications plus the total row count for the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Notification
	err := query.
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

// CountUnread returns the number of notifications without a read stamp.
func (r *Repository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("read_at IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead stamps a single unread notification. The affected count tells
// whether the row existed and was still unread.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		UpdateColumn("read_at", at)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Exists reports whether a notification row with the id is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkAllRead stamps every unread notification and returns how many changed.
func (r *Repository) MarkAllRead(ctx context.Context, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("read_at IS NULL").
		UpdateColumn("read_at", at)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
