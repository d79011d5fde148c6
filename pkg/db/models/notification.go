package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/pkg/enums"
)

// Notification is a back-office inbox entry derived from domain events.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type      enums.NotificationType `gorm:"column:type;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Message   string                 `gorm:"column:message;not null"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
