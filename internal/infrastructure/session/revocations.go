package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type MemoryRevocations struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{until: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRevocations) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, exp := range r.until {
		if !exp.After(now) {
			delete(r.until, id)
		}
	}
	if until.After(now) {
		r.until[sessionID] = until
	}
	return nil
}

func (r *MemoryRevocations) Revoked(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.until[sessionID]
	return ok && exp.After(r.now()), nil
}

// RedisRevocations shares revocations between instances. Keys expire with
// the token they revoke.
type RedisRevocations struct {
	client redis.Cmdable
	prefix string
}

func NewRedisRevocations(client redis.Cmdable, prefix string) *RedisRevocations {
	if prefix == "" {
		prefix = "garmentshop:revoked:"
	}
	return &RedisRevocations{client: client, prefix: prefix}
}

func (r *RedisRevocations) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+sessionID, "1", ttl).Err()
}

func (r *RedisRevocations) Revoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
