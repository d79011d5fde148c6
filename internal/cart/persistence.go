package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/bancadosucesso/storefront-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

// Persister stores serialized carts under a cart key. Load returns nil data
// when no cart exists for the key.
type Persister interface {
	Load(ctx context.Context, cartKey string) ([]byte, error)
	Save(ctx context.Context, cartKey string, data []byte) error
	Delete(ctx context.Context, cartKey string) error
}

// RedisPersister keeps carts in Redis with a sliding TTL.
type RedisPersister struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisPersister builds the Redis-backed cart persister.
func NewRedisPersister(client *redisclient.Client, ttl time.Duration) (*RedisPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &RedisPersister{client: client, ttl: ttl}, nil
}

func (p *RedisPersister) Load(ctx context.Context, cartKey string) ([]byte, error) {
	value, err := p.client.Get(ctx, p.client.CartKey(cartKey))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(value), nil
}

func (p *RedisPersister) Save(ctx context.Context, cartKey string, data []byte) error {
	return p.client.Set(ctx, p.client.CartKey(cartKey), string(data), p.ttl)
}

func (p *RedisPersister) Delete(ctx context.Context, cartKey string) error {
	return p.client.Del(ctx, p.client.CartKey(cartKey))
}

// MemoryPersister is an in-process persister used by tests and local tooling.
type MemoryPersister struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (p *MemoryPersister) Load(ctx context.Context, cartKey string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	value, ok := p.data[cartKey]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (p *MemoryPersister) Save(ctx context.Context, cartKey string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	p.data[cartKey] = stored
	return nil
}

func (p *MemoryPersister) Delete(ctx context.Context, cartKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, cartKey)
	return nil
}
