package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for storefront navigation.
type Category struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string        `gorm:"column:name;not null"`
	Slug          string        `gorm:"column:slug;not null;uniqueIndex"`
	Position      int           `gorm:"column:position;not null;default:0"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// Subcategory refines a category.
type Subcategory struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	Slug       string    `gorm:"column:slug;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
