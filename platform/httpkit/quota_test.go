package httpkit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestQuota(t *testing.T, limit int64) (*QuotaLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewQuotaLimiter(client, time.Minute, limit, "test-quota", nil), mr
}

func TestQuotaAllowsWithinLimit(t *testing.T) {
	limiter, _ := newTestQuota(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be within quota", i+1)
		}
	}
}

func TestQuotaRejectsOverLimit(t *testing.T) {
	limiter, _ := newTestQuota(t, 2)
	ctx := context.Background()

	limiter.Allow(ctx, "1.2.3.4")
	limiter.Allow(ctx, "1.2.3.4")

	ok, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if ok {
		t.Fatal("third request should exceed quota of 2")
	}
}

func TestQuotaIsolatesClients(t *testing.T) {
	limiter, _ := newTestQuota(t, 1)
	ctx := context.Background()

	limiter.Allow(ctx, "1.2.3.4")

	ok, err := limiter.Allow(ctx, "5.6.7.8")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if !ok {
		t.Fatal("a different client should have its own quota")
	}
}

func TestQuotaFailsOpenOnStoreError(t *testing.T) {
	limiter, mr := newTestQuota(t, 1)
	ctx := context.Background()

	mr.Close()

	ok, err := limiter.Allow(ctx, "1.2.3.4")
	if err == nil {
		t.Fatal("expected store error after redis shutdown")
	}
	if !ok {
		t.Fatal("limiter should fail open when the store is unavailable")
	}
}
