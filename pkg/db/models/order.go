package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancadosucesso/storefront-backend/pkg/enums"
)

// Order is the persisted artifact of a successful checkout. Every monetary
// value stored here comes from the verified catalog records, never from the
// client-supplied cart cache.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   int64             `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName  string            `gorm:"column:customer_name;not null"`
	CustomerEmail string            `gorm:"column:customer_email;not null"`
	CustomerPhone string            `gorm:"column:customer_phone;not null"`
	SalespersonID *uuid.UUID        `gorm:"column:salesperson_id;type:uuid"`
	Status        enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Notes         *string           `gorm:"column:notes"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConfirmedAt   *time.Time        `gorm:"column:confirmed_at"`
	CanceledAt    *time.Time        `gorm:"column:canceled_at"`
	ExpiredAt     *time.Time        `gorm:"column:expired_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots one verified line of an order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
