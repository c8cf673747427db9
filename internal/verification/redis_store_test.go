package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedisStore(client)
}

func TestRedisStoreConsumeOnce(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	code := Code{Contact: testContact, Purpose: PurposeLogin, Value: "654321", IssuedAt: now, ExpiresAt: now.Add(DefaultLifetime)}
	if err := store.Save(ctx, code); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Consume(ctx, testContact, "654321", now); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := store.Consume(ctx, testContact, "654321", now); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("want ErrCodeNotFound after consumption, got %v", err)
	}
}

func TestRedisStoreExpired(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	code := Code{Contact: testContact, Purpose: PurposeLogin, Value: "654321", IssuedAt: now, ExpiresAt: now.Add(time.Minute)}
	if err := store.Save(ctx, code); err != nil {
		t.Fatalf("save: %v", err)
	}

	late := now.Add(time.Minute + time.Second)
	if err := store.Consume(ctx, testContact, "654321", late); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("want ErrCodeExpired, got %v", err)
	}
}

func TestRedisStoreMismatchKeepsCode(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	code := Code{Contact: testContact, Purpose: PurposeRegister, Value: "111111", IssuedAt: now, ExpiresAt: now.Add(DefaultLifetime)}
	if err := store.Save(ctx, code); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Consume(ctx, testContact, "222222", now); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("want ErrCodeMismatch, got %v", err)
	}
	if err := store.Consume(ctx, testContact, "111111", now); err != nil {
		t.Fatalf("consume after mismatch: %v", err)
	}
}

func TestRedisStoreSaveSupersedes(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := Code{Contact: testContact, Purpose: PurposeLogin, Value: "111111", IssuedAt: now, ExpiresAt: now.Add(DefaultLifetime)}
	second := Code{Contact: testContact, Purpose: PurposeLogin, Value: "222222", IssuedAt: now, ExpiresAt: now.Add(DefaultLifetime)}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	if err := store.Consume(ctx, testContact, "111111", now); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("superseded code should mismatch, got %v", err)
	}
	if err := store.Consume(ctx, testContact, "222222", now); err != nil {
		t.Fatalf("consume superseding code: %v", err)
	}
}

func TestRedisStorePeek(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.Peek(ctx, testContact, "123456", now); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("want ErrCodeNotFound, got %v", err)
	}

	code := Code{Contact: testContact, Purpose: PurposeLogin, Value: "123456", IssuedAt: now, ExpiresAt: now.Add(DefaultLifetime)}
	if err := store.Save(ctx, code); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Peek(ctx, testContact, "123456", now); err != nil {
		t.Fatalf("peek: %v", err)
	}
	// still present afterwards
	if err := store.Consume(ctx, testContact, "123456", now); err != nil {
		t.Fatalf("consume after peek: %v", err)
	}
}
