package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the runtime read-path cache. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

type noop struct{}

// NewNoop returns a cache that never stores anything.
func NewNoop() Cache { return noop{} }

func (noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noop) Delete(context.Context, ...string) error { return nil }
func (noop) Close() error { return nil }

type localEntry struct {
	val       []byte
	expiresAt time.Time
}

// Local is an in-process cache for single-node deployments and tests.
type Local struct {
	mu  sync.Mutex
	m   map[string]localEntry
	now func() time.Time
}

func NewLocal() *Local {
	return &Local{m: map[string]localEntry{}, now: time.Now}
}

func (c *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.m, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.val...), true, nil
}

func (c *Local) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := localEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.m[key] = e
	return nil
}

func (c *Local) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}

func (c *Local) Close() error { return nil }
