package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yungbote/config-center/internal/platform/logger"
)

func TestLocalExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := NewLocal()
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok, _ := c.Get(ctx, "k"); !ok || string(got) != "v" {
		t.Fatalf("Get: want=v got=%q ok=%v", got, ok)
	}
	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("Get after ttl: want miss")
	}
}

func TestLocalDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLocal()
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Delete(ctx, "a", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("a: want miss")
	}
	if _, ok, _ := c.Get(ctx, "b"); !ok {
		t.Fatalf("b: want hit")
	}
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	ctx := context.Background()
	c, err := NewRedis(addr, "config-center-test:", logger.NewNop())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "runtime:p:prod", []byte(`{"versionNo":1}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "runtime:p:prod")
	if err != nil || !ok || string(got) != `{"versionNo":1}` {
		t.Fatalf("Get: got=%q ok=%v err=%v", got, ok, err)
	}
	if err := c.Delete(ctx, "runtime:p:prod"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "runtime:p:prod"); ok {
		t.Fatalf("Get after delete: want miss")
	}
}
