// Package revocation keeps the jti of logged-out access tokens until they
// would have expired anyway.
package revocation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:revoked:"

// RedisStore shares revocations across API instances.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := s.client.Get(ctx, keyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryStore is the single-instance fallback when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if until.After(now) {
		s.revoked[tokenID] = until
	}
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && exp.After(s.now()), nil
}
