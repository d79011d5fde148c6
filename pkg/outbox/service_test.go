package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox/payloads"
)

func newOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = gdb.Exec(`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`).Error
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = gdb.Exec(`DROP TABLE outbox_events`).Error
	})

	return gdb
}

func TestServiceEmitWrapsPayloadInEnvelope(t *testing.T) {
	gdb := newOutboxDB(t)
	repo := NewRepository(gdb)
	svc := NewService(repo, nil)

	orderID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Version:       1,
		Data: payloads.OrderExpiredEvent{
			OrderID:     orderID,
			OrderNumber: 1001,
			ExpiredAt:   time.Now(),
		},
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, event)
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublished(10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventOrderCreated, rows[0].EventType)
	require.Equal(t, orderID, rows[0].AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.False(t, envelope.OccurredAt.IsZero())
}

func TestServiceEmitIfNotExistsSkipsDuplicates(t *testing.T) {
	gdb := newOutboxDB(t)
	repo := NewRepository(gdb)
	svc := NewService(repo, nil)

	orderID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventOrderExpired,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Version:       1,
		Data:          payloads.OrderExpiredEvent{OrderID: orderID, OrderNumber: 1002},
	}

	for i := 0; i < 2; i++ {
		err := gdb.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExists(context.Background(), tx, event)
		})
		require.NoError(t, err)
	}

	rows, err := repo.FetchUnpublished(10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRepositoryMarkPublishedAndFailed(t *testing.T) {
	gdb := newOutboxDB(t)
	repo := NewRepository(gdb)

	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	require.NoError(t, gdb.Create(&row).Error)

	require.NoError(t, repo.MarkFailed(row.ID, context.DeadlineExceeded))

	var updated models.OutboxEvent
	require.NoError(t, gdb.First(&updated, "id = ?", row.ID).Error)
	require.Equal(t, 1, updated.AttemptCount)
	require.NotNil(t, updated.LastError)

	require.NoError(t, repo.MarkPublished(row.ID))
	rows, err := repo.FetchUnpublished(10, 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	gdb := newOutboxDB(t)
	repo := NewRepository(gdb)

	old := time.Now().Add(-48 * time.Hour)
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		PublishedAt:   &old,
	}
	require.NoError(t, gdb.Create(&row).Error)

	deleted, err := repo.DeletePublishedBefore(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}
