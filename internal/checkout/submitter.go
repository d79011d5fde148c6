package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/config"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/payloads"
)

// Submission carries the verified checkout data handed to a Submitter.
type Submission struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	SalespersonID *uuid.UUID
	Notes         *string
	Items         []VerifiedItem
	Total         decimal.Decimal
	Actor         *outbox.ActorRef
}

// Artifact is what the shopper receives after a successful checkout. Exactly
// one of OrderID/WhatsAppURL is set depending on the configured fulfillment.
type Artifact struct {
	Fulfillment string          `json:"fulfillment"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	OrderNumber *int64          `json:"order_number,omitempty"`
	WhatsAppURL *string         `json:"whatsapp_url,omitempty"`
	Message     string          `json:"message"`
	Total       decimal.Decimal `json:"total"`
	TotalLabel  string          `json:"total_label"`
}

// Submitter turns a verified cart into a fulfillment artifact.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*Artifact, error)
	Kind() string
}

// OrdersRepo is the slice of the orders repository the submitter needs.
type OrdersRepo interface {
	NextOrderNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

type salespersonLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Salesperson, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// OrderSubmitter persists the checkout as a pending order plus an outbox
// event, all in one transaction.
type OrderSubmitter struct {
	orders      func(tx *gorm.DB) OrdersRepo
	salespeople salespersonLoader
	runner      txRunner
	events      eventEmitter
	storeName   string
	now         func() time.Time
}

// NewOrderSubmitter wires the order-persisting fulfillment path.
func NewOrderSubmitter(
	orders func(tx *gorm.DB) OrdersRepo,
	salespeople salespersonLoader,
	runner txRunner,
	events eventEmitter,
	cfg config.CheckoutConfig,
) (*OrderSubmitter, error) {
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if salespeople == nil {
		return nil, fmt.Errorf("salesperson repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &OrderSubmitter{
		orders:      orders,
		salespeople: salespeople,
		runner:      runner,
		events:      events,
		storeName:   cfg.StoreName,
		now:         time.Now,
	}, nil
}

func (s *OrderSubmitter) Kind() string { return config.FulfillmentOrder }

func (s *OrderSubmitter) Submit(ctx context.Context, sub Submission) (*Artifact, error) {
	salespersonName := ""
	if sub.SalespersonID != nil {
		salesperson, err := s.salespeople.FindByID(ctx, *sub.SalespersonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "salesperson not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load salesperson")
		}
		if !salesperson.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "salesperson is not active")
		}
		salespersonName = salesperson.Name
	}

	now := s.now().UTC()
	var persisted *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders(tx)

		number, txErr := repo.NextOrderNumber(ctx)
		if txErr != nil {
			return txErr
		}

		order := &models.Order{
			ID:            uuid.New(),
			OrderNumber:   number,
			CustomerName:  sub.CustomerName,
			CustomerEmail: sub.CustomerEmail,
			CustomerPhone: sub.CustomerPhone,
			SalespersonID: sub.SalespersonID,
			Status:        enums.OrderStatusPending,
			Total:         sub.Total,
			Notes:         sub.Notes,
			Items:         buildOrderItems(sub.Items),
		}
		if _, txErr = repo.Create(ctx, order); txErr != nil {
			return txErr
		}
		persisted = order

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         sub.Actor,
			Data:          buildOrderCreatedPayload(order, sub, salespersonName),
			OccurredAt:    now,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	message := BuildReceiptMessage(Receipt{
		StoreName:     s.storeName,
		OrderNumber:   &persisted.OrderNumber,
		CustomerName:  sub.CustomerName,
		CustomerEmail: sub.CustomerEmail,
		CustomerPhone: sub.CustomerPhone,
		Items:         sub.Items,
		Total:         sub.Total,
	})

	return &Artifact{
		Fulfillment: config.FulfillmentOrder,
		OrderID:     &persisted.ID,
		OrderNumber: &persisted.OrderNumber,
		Message:     message,
		Total:       sub.Total,
		TotalLabel:  FormatBRL(sub.Total),
	}, nil
}

// WhatsAppSubmitter builds a wa.me deep link instead of persisting anything.
type WhatsAppSubmitter struct {
	number    string
	storeName string
}

// NewWhatsAppSubmitter wires the deep-link fulfillment path.
func NewWhatsAppSubmitter(cfg config.CheckoutConfig) (*WhatsAppSubmitter, error) {
	if cfg.WhatsAppNumber == "" {
		return nil, fmt.Errorf("whatsapp number required")
	}
	return &WhatsAppSubmitter{number: cfg.WhatsAppNumber, storeName: cfg.StoreName}, nil
}

func (s *WhatsAppSubmitter) Kind() string { return config.FulfillmentWhatsApp }

func (s *WhatsAppSubmitter) Submit(ctx context.Context, sub Submission) (*Artifact, error) {
	message := BuildReceiptMessage(Receipt{
		StoreName:     s.storeName,
		CustomerName:  sub.CustomerName,
		CustomerEmail: sub.CustomerEmail,
		CustomerPhone: sub.CustomerPhone,
		Items:         sub.Items,
		Total:         sub.Total,
	})
	link := BuildWhatsAppLink(s.number, message)

	return &Artifact{
		Fulfillment: config.FulfillmentWhatsApp,
		WhatsAppURL: &link,
		Message:     message,
		Total:       sub.Total,
		TotalLabel:  FormatBRL(sub.Total),
	}, nil
}

func buildOrderItems(items []VerifiedItem) []models.OrderItem {
	rows := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		productID := item.ProductID
		rows = append(rows, models.OrderItem{
			ID:        uuid.New(),
			ProductID: &productID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return rows
}

func buildOrderCreatedPayload(order *models.Order, sub Submission, salespersonName string) payloads.OrderCreatedEvent {
	items := make([]payloads.OrderItemPayload, 0, len(sub.Items))
	for _, item := range sub.Items {
		productID := item.ProductID
		items = append(items, payloads.OrderItemPayload{
			ProductID: &productID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	notes := ""
	if sub.Notes != nil {
		notes = *sub.Notes
	}
	return payloads.OrderCreatedEvent{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerName:    sub.CustomerName,
		CustomerEmail:   sub.CustomerEmail,
		CustomerPhone:   sub.CustomerPhone,
		SalespersonID:   sub.SalespersonID,
		SalespersonName: salespersonName,
		Items:           items,
		Total:           sub.Total,
		Notes:           notes,
	}
}
