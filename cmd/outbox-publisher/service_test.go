package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bancadosucesso/storefront-backend/pkg/config"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit > len(f.events) {
		limit = len(f.events)
	}
	return f.events[:limit], nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(ctx context.Context) (string, error) {
	return "msg-1", f.err
}

type fakePublisher struct {
	results  map[uuid.UUID]error
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	id, _ := uuid.Parse(msg.Attributes["aggregate_id"])
	return fakeResult{err: f.results[id]}
}

func testOutboxEvent(aggregateID uuid.UUID) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     time.Now(),
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:    &config.Config{Outbox: config.OutboxConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 3}},
		Logger:    logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard}),
		Repo:      repo,
		Publisher: pub,
	})
	require.NoError(t, err)
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	orderID := uuid.New()
	event := testOutboxEvent(orderID)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())

	require.NoError(t, err)
	assert.True(t, processed)
	require.Len(t, repo.published, 1)
	assert.Equal(t, event.ID, repo.published[0])
	assert.Empty(t, repo.failed)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, string(enums.EventOrderCreated), msg.Attributes["event_type"])
	assert.Equal(t, orderID.String(), msg.Attributes["aggregate_id"])
	assert.JSONEq(t, `{"version":1}`, string(msg.Data))
}

func TestProcessBatchFailureDoesNotStopBatch(t *testing.T) {
	badOrder := uuid.New()
	goodOrder := uuid.New()
	badEvent := testOutboxEvent(badOrder)
	goodEvent := testOutboxEvent(goodOrder)
	repo := &fakeRepo{events: []models.OutboxEvent{badEvent, goodEvent}}
	pub := &fakePublisher{results: map[uuid.UUID]error{badOrder: errors.New("topic unavailable")}}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())

	require.NoError(t, err)
	assert.True(t, processed)
	require.Len(t, repo.failed, 1)
	assert.Equal(t, badEvent.ID, repo.failed[0])
	require.Len(t, repo.published, 1)
	assert.Equal(t, goodEvent.ID, repo.published[0])
}

func TestProcessBatchEmpty(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())

	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessBatchFetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("connection reset")}
	svc := newTestService(t, repo, &fakePublisher{})

	_, err := svc.processBatch(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 500 * time.Millisecond
	current := base
	for i := 0; i < 10; i++ {
		current = nextBackoff(current, base, maxBackoff)
	}
	assert.Equal(t, maxBackoff, current)
}
