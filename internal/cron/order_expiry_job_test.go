package cron

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/internal/orders"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func setupCronTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  salesperson_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  total TEXT NOT NULL,
  notes TEXT,
  confirmed_at DATETIME,
  canceled_at DATETIME,
  expired_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)

	t.Cleanup(func() {
		_ = db.Exec("DROP TABLE IF EXISTS orders").Error
	})

	return db
}

type cronTxRunner struct {
	db *gorm.DB
}

func (r *cronTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(r.db)
}

type dedupedRecorder struct {
	events []outbox.DomainEvent
	seen   map[uuid.UUID]bool
}

func (r *dedupedRecorder) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if r.seen == nil {
		r.seen = map[uuid.UUID]bool{}
	}
	if r.seen[event.AggregateID] {
		return nil
	}
	r.seen[event.AggregateID] = true
	r.events = append(r.events, event)
	return nil
}

func seedOrder(t *testing.T, db *gorm.DB, number int64, status enums.OrderStatus, age time.Duration) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
		CustomerPhone: "91982750788",
		Status:        status,
		Total:         decimal.RequireFromString("45.00"),
		CreatedAt:     time.Now().Add(-age),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newExpiryJob(t *testing.T, db *gorm.DB, emitter dedupedEmitter) Job {
	t.Helper()
	job, err := NewOrderExpiryJob(OrderExpiryJobParams{
		Logger:      testLogger(),
		DB:          &cronTxRunner{db: db},
		Orders:      orders.NewRepository(db),
		Outbox:      emitter,
		ExpireAfter: 240 * time.Hour,
	})
	require.NoError(t, err)
	return job
}

func TestOrderExpiryJobExpiresStalePending(t *testing.T) {
	db := setupCronTestDB(t)
	recorder := &dedupedRecorder{}
	job := newExpiryJob(t, db, recorder)

	stale := seedOrder(t, db, 1001, enums.OrderStatusPending, 300*time.Hour)
	fresh := seedOrder(t, db, 1002, enums.OrderStatusPending, time.Hour)
	confirmed := seedOrder(t, db, 1003, enums.OrderStatusConfirmed, 300*time.Hour)

	require.NoError(t, job.Run(context.Background()))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.Equal(t, enums.OrderStatusExpired, reloaded.Status)
	assert.NotNil(t, reloaded.ExpiredAt)

	reloaded = models.Order{}
	require.NoError(t, db.First(&reloaded, "id = ?", fresh.ID).Error)
	assert.Equal(t, enums.OrderStatusPending, reloaded.Status)

	reloaded = models.Order{}
	require.NoError(t, db.First(&reloaded, "id = ?", confirmed.ID).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, enums.EventOrderExpired, recorder.events[0].EventType)
	assert.Equal(t, stale.ID, recorder.events[0].AggregateID)
}

func TestOrderExpiryJobIsIdempotent(t *testing.T) {
	db := setupCronTestDB(t)
	recorder := &dedupedRecorder{}
	job := newExpiryJob(t, db, recorder)

	seedOrder(t, db, 1001, enums.OrderStatusPending, 300*time.Hour)

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	assert.Len(t, recorder.events, 1)
}

func TestOrderExpiryJobNothingToDo(t *testing.T) {
	db := setupCronTestDB(t)
	recorder := &dedupedRecorder{}
	job := newExpiryJob(t, db, recorder)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, recorder.events)
}
