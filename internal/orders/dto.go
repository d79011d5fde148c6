package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
)

// OrderItemDTO is the API-facing order line shape.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the API-facing order shape.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   int64             `json:"order_number"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone"`
	SalespersonID *uuid.UUID        `json:"salesperson_id,omitempty"`
	Status        enums.OrderStatus `json:"status"`
	Total         decimal.Decimal   `json:"total"`
	Notes         *string           `json:"notes,omitempty"`
	Items         []OrderItemDTO    `json:"items"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
	CanceledAt    *time.Time        `json:"canceled_at,omitempty"`
	ExpiredAt     *time.Time        `json:"expired_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ToDTO converts the persistence model to the API shape.
func ToDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return &OrderDTO{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		SalespersonID: order.SalespersonID,
		Status:        order.Status,
		Total:         order.Total,
		Notes:         order.Notes,
		Items:         items,
		ConfirmedAt:   order.ConfirmedAt,
		CanceledAt:    order.CanceledAt,
		ExpiredAt:     order.ExpiredAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// ToDTOs converts a slice of order models.
func ToDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
