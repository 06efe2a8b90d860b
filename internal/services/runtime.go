package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/cache"
	"github.com/yungbote/config-center/internal/platform/logger"
)

// RuntimeService answers "what is live for this business line" for SDK
// consumers. It composes the release binding with the bound version.
type RuntimeService interface {
	// ResolveActive defaults env to prod.
	ResolveActive(ctx context.Context, packCode string, env types.Environment) (*types.ActivePack, error)
	ResolveVersion(ctx context.Context, packCode string, versionNo int) (*types.ActivePack, error)
}

type runtimeService struct {
	store repos.Store
	log   *logger.Logger
	cache cache.Cache
	ttl   time.Duration
}

func NewRuntimeService(store repos.Store, baseLog *logger.Logger, runtimeCache cache.Cache, ttl time.Duration) RuntimeService {
	if runtimeCache == nil {
		runtimeCache = cache.NewNoop()
	}
	return &runtimeService{
		store: store,
		log:   baseLog.With("service", "RuntimeService"),
		cache: runtimeCache,
		ttl:   ttl,
	}
}

func RuntimeCacheKey(packCode string, env types.Environment) string {
	return "runtime:" + packCode + ":" + string(env)
}

func (s *runtimeService) ResolveActive(ctx context.Context, packCode string, env types.Environment) (*types.ActivePack, error) {
	if env == "" {
		env = governance.EnvProd
	}
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	if err := requireEnvironment(env); err != nil {
		return nil, err
	}

	key := RuntimeCacheKey(packCode, env)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("runtime cache read failed", "key", key, "error", err)
	} else if ok {
		var cached types.ActivePack
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		s.log.Warn("dropping undecodable runtime cache entry", "key", key)
	}

	b, err := s.store.GetReleaseBinding(ctx, packCode, env)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, pkgerrors.ErrNotFound
	}
	v, err := s.store.GetPackVersion(ctx, packCode, b.ActiveVersionNo)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, pkgerrors.ErrNotFound
	}
	out := &types.ActivePack{Pack: v.ContentJSON, VersionNo: v.VersionNo, Environment: env}

	if raw, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.log.Warn("runtime cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (s *runtimeService) ResolveVersion(ctx context.Context, packCode string, versionNo int) (*types.ActivePack, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	if err := requireVersionNo(versionNo); err != nil {
		return nil, err
	}
	v, err := s.store.GetPackVersion(ctx, packCode, versionNo)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return &types.ActivePack{Pack: v.ContentJSON, VersionNo: v.VersionNo}, nil
}
