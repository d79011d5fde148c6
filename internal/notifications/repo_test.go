package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/pagination"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  order_id TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	t.Cleanup(func() {
		_ = db.Exec("DROP TABLE IF EXISTS notifications").Error
	})

	return db
}

func mustCreateTestNotification(t *testing.T, db *gorm.DB, title string, read bool, createdAt time.Time) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      enums.NotificationTypeOrder,
		Title:     title,
		Message:   "Maria Silva fechou um pedido de R$ 45,00.",
		CreatedAt: createdAt,
	}
	if read {
		at := createdAt.Add(time.Minute)
		notification.ReadAt = &at
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationRepositoryListNewestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustCreateTestNotification(t, db, "Novo pedido #1001", false, time.Now().Add(-2*time.Hour))
	mustCreateTestNotification(t, db, "Novo pedido #1002", false, time.Now().Add(-time.Hour))
	mustCreateTestNotification(t, db, "Novo pedido #1003", false, time.Now())

	rows, total, err := repo.List(ctx, ListFilter{}, pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Novo pedido #1003", rows[0].Title)
	assert.Equal(t, "Novo pedido #1002", rows[1].Title)
}

func TestNotificationRepositoryListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustCreateTestNotification(t, db, "Novo pedido #1001", true, time.Now().Add(-time.Hour))
	unread := mustCreateTestNotification(t, db, "Novo pedido #1002", false, time.Now())

	rows, total, err := repo.List(ctx, ListFilter{UnreadOnly: true}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, unread.ID, rows[0].ID)

	count, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	notification := mustCreateTestNotification(t, db, "Novo pedido #1001", false, time.Now())
	now := time.Now().UTC()

	affected, err := repo.MarkRead(ctx, notification.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// second pass is a no-op, the row is already stamped
	affected, err = repo.MarkRead(ctx, notification.ID, now)
	require.NoError(t, err)
	assert.Zero(t, affected)

	exists, err := repo.Exists(ctx, notification.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNotificationRepositoryMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustCreateTestNotification(t, db, "Novo pedido #1001", false, time.Now().Add(-time.Hour))
	mustCreateTestNotification(t, db, "Novo pedido #1002", false, time.Now())
	mustCreateTestNotification(t, db, "Novo pedido #1000", true, time.Now().Add(-2*time.Hour))

	count, err := repo.MarkAllRead(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
