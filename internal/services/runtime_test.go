package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/config-center/internal/data/repos"
	"github.com/yungbote/config-center/internal/domain/governance"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/cache"
)

func TestResolveActiveNotBound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repos.Store) {
		ctx := context.Background()
		e := newTestEngine(t, store, EngineOptions{})
		mustPackVersion(t, ctx, e, "p")
		if _, err := e.Runtime.ResolveActive(ctx, "p", governance.EnvDev); !errors.Is(err, pkgerrors.ErrNotFound) {
			t.Fatalf("unbound: want ErrNotFound got=%v", err)
		}
		if _, err := e.Runtime.ResolveActive(ctx, "p", "qa"); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("bad env: want ErrInvalidArgument got=%v", err)
		}
	})
}

func TestResolveVersion(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store repos.Store) {
		ctx := context.Background()
		e := newTestEngine(t, store, EngineOptions{})
		v := mustPackVersion(t, ctx, e, "p")

		got, err := e.Runtime.ResolveVersion(ctx, "p", 1)
		if err != nil {
			t.Fatalf("ResolveVersion: %v", err)
		}
		if string(got.Pack) != string(v.ContentJSON) || got.Environment != "" {
			t.Fatalf("resolved: got=%+v", got)
		}
		if _, err := e.Runtime.ResolveVersion(ctx, "p", 9); !errors.Is(err, pkgerrors.ErrNotFound) {
			t.Fatalf("missing: want ErrNotFound got=%v", err)
		}
	})
}

func TestResolveActiveServesFromCache(t *testing.T) {
	ctx := context.Background()
	runtimeCache := cache.NewLocal()
	e := newTestEngine(t, backends()[0].open(t), EngineOptions{Cache: runtimeCache})
	key := RuntimeCacheKey("p", governance.EnvStaging)
	if err := runtimeCache.Set(ctx, key, []byte(`{"pack":{"id":"cached"},"versionNo":7,"environment":"staging"}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := e.Runtime.ResolveActive(ctx, "p", governance.EnvStaging)
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if got.VersionNo != 7 || string(got.Pack) != `{"id":"cached"}` {
		t.Fatalf("cached: got=%+v", got)
	}

	_ = runtimeCache.Set(ctx, key, []byte(`not json`), 0)
	if _, err := e.Runtime.ResolveActive(ctx, "p", governance.EnvStaging); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("undecodable entry falls through to the store: got=%v", err)
	}
}
