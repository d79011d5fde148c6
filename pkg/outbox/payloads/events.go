package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemPayload mirrors a single verified order line.
type OrderItemPayload struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderCreatedEvent is emitted when checkout persists a verified order.
type OrderCreatedEvent struct {
	OrderID         uuid.UUID          `json:"order_id"`
	OrderNumber     int64              `json:"order_number"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	SalespersonID   *uuid.UUID         `json:"salesperson_id,omitempty"`
	SalespersonName string             `json:"salesperson_name,omitempty"`
	Items           []OrderItemPayload `json:"items"`
	Total           decimal.Decimal    `json:"total"`
	Notes           string             `json:"notes,omitempty"`
}

// OrderExpiredEvent describes the payload when pending orders time out.
type OrderExpiredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	ExpiredAt   time.Time `json:"expired_at"`
}

// OrderCanceledEvent is emitted when the back office cancels a pending order.
type OrderCanceledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	CanceledAt  time.Time `json:"canceled_at"`
	Reason      string    `json:"reason,omitempty"`
}
