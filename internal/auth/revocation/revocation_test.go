package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Revoke(ctx, "abc", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, err := store.IsRevoked(ctx, "abc"); err != nil || !revoked {
		t.Fatalf("IsRevoked = %v, %v", revoked, err)
	}
	if revoked, _ := store.IsRevoked(ctx, "other"); revoked {
		t.Fatal("unrelated token reported revoked")
	}

	mr.FastForward(2 * time.Minute)
	if revoked, _ := store.IsRevoked(ctx, "abc"); revoked {
		t.Fatal("revocation should expire with the token")
	}
}

func TestRedisStoreSkipsExpiredTokens(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := NewRedisStore(client)
	if err := store.Revoke(context.Background(), "old", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expired token should not be stored, have %v", mr.Keys())
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Revoke(ctx, "a", now.Add(time.Minute))
	if revoked, _ := store.IsRevoked(ctx, "a"); !revoked {
		t.Fatal("expected revoked token")
	}

	now = now.Add(2 * time.Minute)
	if revoked, _ := store.IsRevoked(ctx, "a"); revoked {
		t.Fatal("revocation should lapse after expiry")
	}

	_ = store.Revoke(ctx, "b", now.Add(time.Minute))
	if _, ok := store.revoked["a"]; ok {
		t.Fatal("expired entries should be pruned")
	}
}
