package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/bancadosucesso/storefront-backend/internal/checkout"
	"github.com/bancadosucesso/storefront-backend/pkg/config"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/idempotency"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches order events and turns them into back-office inbox entries.
// For new orders it also renders the WhatsApp receipt deep link when a store
// number is configured.
type Consumer struct {
	repo         creator
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	decoders     *outbox.DecoderRegistry
	checkoutCfg  config.CheckoutConfig
	logg         *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(repo creator, subscription *pubsub.Subscriber, manager *idempotency.Manager, checkoutCfg config.CheckoutConfig, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		decoders:     orderEventDecoders(),
		checkoutCfg:  checkoutCfg,
		logg:         logg,
	}, nil
}

func orderEventDecoders() *outbox.DecoderRegistry {
	registry := outbox.NewDecoderRegistry()
	registry.Register(enums.EventOrderCreated, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.OrderCreatedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	})
	registry.Register(enums.EventOrderExpired, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.OrderExpiredEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	})
	registry.Register(enums.EventOrderCanceled, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.OrderCanceledEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return event, nil
	})
	return registry
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.Attributes, msg.Data, msg.ID)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, attributes map[string]string, data []byte, messageID string) processResult {
	rawType := attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	notification := buildNotification(decoded)
	if notification == nil {
		c.logg.Info(logCtx, "event type not handled")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{"order_id": notification.OrderID})
	c.logg.Info(logCtx, "order notification stored")

	if created, ok := decoded.(payloads.OrderCreatedEvent); ok {
		c.dispatchReceipt(logCtx, created)
	}
	return processResult{ack: true}
}

// dispatchReceipt renders the wa.me deep link for a freshly placed order. The
// link is surfaced through the log stream for the store operator to pick up.
func (c *Consumer) dispatchReceipt(ctx context.Context, event payloads.OrderCreatedEvent) {
	if c.checkoutCfg.WhatsAppNumber == "" {
		return
	}

	items := make([]checkout.VerifiedItem, 0, len(event.Items))
	for _, item := range event.Items {
		verified := checkout.VerifiedItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		}
		if item.ProductID != nil {
			verified.ProductID = *item.ProductID
		}
		items = append(items, verified)
	}

	orderNumber := event.OrderNumber
	message := checkout.BuildReceiptMessage(checkout.Receipt{
		StoreName:     c.checkoutCfg.StoreName,
		OrderNumber:   &orderNumber,
		CustomerName:  event.CustomerName,
		CustomerEmail: event.CustomerEmail,
		CustomerPhone: event.CustomerPhone,
		Items:         items,
		Total:         event.Total,
	})

	c.logg.Info(c.logg.WithFields(ctx, map[string]any{
		"order_number":  event.OrderNumber,
		"whatsapp_link": checkout.BuildWhatsAppLink(c.checkoutCfg.WhatsAppNumber, message),
	}), "order receipt ready")
}

func buildNotification(decoded interface{}) *models.Notification {
	switch event := decoded.(type) {
	case payloads.OrderCreatedEvent:
		orderID := event.OrderID
		return &models.Notification{
			Type:    enums.NotificationTypeOrder,
			Title:   fmt.Sprintf("Novo pedido #%d", event.OrderNumber),
			Message: fmt.Sprintf("%s fechou um pedido de %s.", event.CustomerName, checkout.FormatBRL(event.Total)),
			OrderID: &orderID,
		}
	case payloads.OrderExpiredEvent:
		orderID := event.OrderID
		return &models.Notification{
			Type:    enums.NotificationTypeOrder,
			Title:   fmt.Sprintf("Pedido #%d expirado", event.OrderNumber),
			Message: fmt.Sprintf("O pedido #%d expirou sem confirmação.", event.OrderNumber),
			OrderID: &orderID,
		}
	case payloads.OrderCanceledEvent:
		orderID := event.OrderID
		message := fmt.Sprintf("O pedido #%d foi cancelado.", event.OrderNumber)
		if event.Reason != "" {
			message = fmt.Sprintf("O pedido #%d foi cancelado. Motivo: %s", event.OrderNumber, event.Reason)
		}
		return &models.Notification{
			Type:    enums.NotificationTypeOrder,
			Title:   fmt.Sprintf("Pedido #%d cancelado", event.OrderNumber),
			Message: message,
			OrderID: &orderID,
		}
	default:
		return nil
	}
}
