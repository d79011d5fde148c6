package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Price is the authoritative value every
// checkout is re-verified against; the cart only ever holds a cached copy.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURL      *string         `gorm:"column:image_url"`
	CategoryID    *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	SubcategoryID *uuid.UUID      `gorm:"column:subcategory_id;type:uuid"`
	Tags          pq.StringArray  `gorm:"column:tags;type:text[]"`
	IsFeatured    bool            `gorm:"column:is_featured;not null;default:false"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
