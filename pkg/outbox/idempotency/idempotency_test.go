package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	setNXResult bool
	setNXError  error
	lastKey     string
	lastTTL     time.Duration
	lastDeleted string
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.lastKey = key
	f.lastTTL = ttl
	return f.setNXResult, f.setNXError
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "banca:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		f.lastDeleted = keys[0]
	}
	return nil
}

func TestCheckAndMarkProcessed_FirstTime(t *testing.T) {
	store := &fakeStore{setNXResult: true}
	manager, err := NewManager(store, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	eventID := uuid.New()
	already, err := manager.CheckAndMarkProcessed(context.Background(), "order-notifier", eventID)
	if err != nil {
		t.Fatalf("CheckAndMarkProcessed: %v", err)
	}
	if already {
		t.Fatalf("expected first call to return false, got true")
	}

	expectedKey := "banca:idempotency:evt:processed:order-notifier:" + eventID.String()
	if store.lastKey != expectedKey {
		t.Fatalf("unexpected key: %q", store.lastKey)
	}
	if store.lastTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl: %v", store.lastTTL)
	}
}

func TestCheckAndMarkProcessed_AlreadyProcessed(t *testing.T) {
	store := &fakeStore{setNXResult: false}
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	already, err := manager.CheckAndMarkProcessed(context.Background(), "order-notifier", uuid.New())
	if err != nil {
		t.Fatalf("CheckAndMarkProcessed: %v", err)
	}
	if !already {
		t.Fatalf("expected already-processed result")
	}
}

func TestCheckAndMarkProcessed_StoreError(t *testing.T) {
	store := &fakeStore{setNXError: errors.New("redis offline")}
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := manager.CheckAndMarkProcessed(context.Background(), "order-notifier", uuid.New()); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}

func TestCheckAndMarkProcessed_Validation(t *testing.T) {
	manager, err := NewManager(&fakeStore{}, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := manager.CheckAndMarkProcessed(context.Background(), "", uuid.New()); err == nil {
		t.Fatalf("expected error for empty consumer")
	}
	if _, err := manager.CheckAndMarkProcessed(context.Background(), "order-notifier", uuid.Nil); err == nil {
		t.Fatalf("expected error for nil event id")
	}
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	eventID := uuid.New()
	if err := manager.Delete(context.Background(), "order-notifier", eventID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	expectedKey := "banca:idempotency:evt:processed:order-notifier:" + eventID.String()
	if store.lastDeleted != expectedKey {
		t.Fatalf("unexpected deleted key: %q", store.lastDeleted)
	}
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := NewManager(&fakeStore{}, -time.Second); err == nil {
		t.Fatalf("expected error for negative ttl")
	}
}
