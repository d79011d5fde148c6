package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bancadosucesso/storefront-backend/pkg/config"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/idempotency"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/payloads"
)

type fakeNotificationRepo struct {
	created []*models.Notification
	err     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, notification)
	return nil
}

type fakeIdempotencyStore struct {
	seen   map[string]bool
	setErr error
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "banca:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.seen, key)
	}
	return nil
}

func newTestConsumer(t *testing.T, repo *fakeNotificationRepo, store *fakeIdempotencyStore) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(store, time.Hour)
	require.NoError(t, err)
	return &Consumer{
		repo:        repo,
		idempotency: manager,
		decoders:    orderEventDecoders(),
		logg:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func encodeEnvelope(t *testing.T, eventID uuid.UUID, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return raw
}

func TestConsumerStoresOrderCreatedNotification(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(t, repo, &fakeIdempotencyStore{})

	orderID := uuid.New()
	data := encodeEnvelope(t, uuid.New(), payloads.OrderCreatedEvent{
		OrderID:      orderID,
		OrderNumber:  1001,
		CustomerName: "Maria Silva",
		Total:        decimal.RequireFromString("45.00"),
	})

	result := consumer.process(context.Background(), map[string]string{"event_type": "order_created"}, data, "m1")
	assert.True(t, result.ack)
	require.Len(t, repo.created, 1)

	notification := repo.created[0]
	assert.Equal(t, enums.NotificationTypeOrder, notification.Type)
	assert.Equal(t, "Novo pedido #1001", notification.Title)
	assert.Equal(t, "Maria Silva fechou um pedido de R$ 45,00.", notification.Message)
	require.NotNil(t, notification.OrderID)
	assert.Equal(t, orderID, *notification.OrderID)
}

func TestConsumerDispatchesReceiptWhenConfigured(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(t, repo, &fakeIdempotencyStore{})
	consumer.checkoutCfg = config.CheckoutConfig{WhatsAppNumber: "5591982750788", StoreName: "Banca do Sucesso"}

	data := encodeEnvelope(t, uuid.New(), payloads.OrderCreatedEvent{
		OrderID:       uuid.New(),
		OrderNumber:   1001,
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
		CustomerPhone: "91982750788",
		Items: []payloads.OrderItemPayload{
			{Name: "Caderno Espiral", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2, Subtotal: decimal.RequireFromString("20.00")},
			{Name: "Caneta Azul", UnitPrice: decimal.RequireFromString("25.00"), Quantity: 1, Subtotal: decimal.RequireFromString("25.00")},
		},
		Total: decimal.RequireFromString("45.00"),
	})

	result := consumer.process(context.Background(), map[string]string{"event_type": "order_created"}, data, "m1")
	assert.True(t, result.ack)
	require.Len(t, repo.created, 1)
}

func TestConsumerStoresCanceledNotificationWithReason(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(t, repo, &fakeIdempotencyStore{})

	data := encodeEnvelope(t, uuid.New(), payloads.OrderCanceledEvent{
		OrderID:     uuid.New(),
		OrderNumber: 1002,
		CanceledAt:  time.Now().UTC(),
		Reason:      "cliente desistiu",
	})

	result := consumer.process(context.Background(), map[string]string{"event_type": "order_canceled"}, data, "m1")
	assert.True(t, result.ack)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Pedido #1002 cancelado", repo.created[0].Title)
	assert.Contains(t, repo.created[0].Message, "cliente desistiu")
}

func TestConsumerSkipsUnknownEventType(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(t, repo, &fakeIdempotencyStore{})

	result := consumer.process(context.Background(), map[string]string{"event_type": "something_else"}, []byte(`{}`), "m1")
	assert.True(t, result.ack)
	assert.Empty(t, repo.created)
}

func TestConsumerAcksDuplicateEvents(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(t, repo, &fakeIdempotencyStore{})

	eventID := uuid.New()
	data := encodeEnvelope(t, eventID, payloads.OrderExpiredEvent{
		OrderID:     uuid.New(),
		OrderNumber: 1003,
		ExpiredAt:   time.Now().UTC(),
	})
	attributes := map[string]string{"event_type": "order_expired"}

	first := consumer.process(context.Background(), attributes, data, "m1")
	second := consumer.process(context.Background(), attributes, data, "m2")
	assert.True(t, first.ack)
	assert.True(t, second.ack)
	assert.Len(t, repo.created, 1)
}

func TestConsumerNacksWhenStoreFails(t *testing.T) {
	repo := &fakeNotificationRepo{err: errors.New("db offline")}
	store := &fakeIdempotencyStore{}
	consumer := newTestConsumer(t, repo, store)

	data := encodeEnvelope(t, uuid.New(), payloads.OrderCreatedEvent{
		OrderID:      uuid.New(),
		OrderNumber:  1004,
		CustomerName: "Maria Silva",
		Total:        decimal.RequireFromString("45.00"),
	})

	result := consumer.process(context.Background(), map[string]string{"event_type": "order_created"}, data, "m1")
	assert.True(t, result.nack)
	// marker is cleared so the redelivered message is processed again
	assert.Empty(t, store.seen)
}

func TestConsumerNacksWhenIdempotencyUnavailable(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(t, repo, &fakeIdempotencyStore{setErr: errors.New("redis offline")})

	data := encodeEnvelope(t, uuid.New(), payloads.OrderCreatedEvent{
		OrderID:     uuid.New(),
		OrderNumber: 1005,
		Total:       decimal.RequireFromString("45.00"),
	})

	result := consumer.process(context.Background(), map[string]string{"event_type": "order_created"}, data, "m1")
	assert.True(t, result.nack)
	assert.Empty(t, repo.created)
}

func TestConsumerAcksMalformedEnvelope(t *testing.T) {
	repo := &fakeNotificationRepo{}
	consumer := newTestConsumer(t, repo, &fakeIdempotencyStore{})

	result := consumer.process(context.Background(), map[string]string{"event_type": "order_created"}, []byte("not-json"), "m1")
	assert.True(t, result.ack)
	assert.Empty(t, repo.created)
}
