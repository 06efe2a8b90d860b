package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/cache"
	"github.com/yungbote/config-center/internal/platform/logger"
)

// ReleaseService is the only writer of release bindings.
type ReleaseService interface {
	ValidateVersion(ctx context.Context, packCode string, versionNo int) (*types.ValidationResult, error)
	ReleaseVersion(ctx context.Context, in types.ReleaseRequest) (*types.ReleaseBinding, error)
	// GetActiveVersionNo reports ok=false when nothing is bound.
	GetActiveVersionNo(ctx context.Context, packCode string, env types.Environment) (versionNo int, ok bool, err error)
	ListReleaseBindings(ctx context.Context, packCode string) ([]*types.ReleaseBinding, error)
}

type ReleaseOptions struct {
	// RequireValidContent makes ReleaseVersion run the content validator after
	// the gating checks.
	RequireValidContent bool
}

type releaseService struct {
	store     repos.Store
	log       *logger.Logger
	validator ContentValidator
	cache     cache.Cache
	metrics   GovernanceMetrics
	opts      ReleaseOptions
}

func NewReleaseService(store repos.Store, baseLog *logger.Logger, validator ContentValidator, runtimeCache cache.Cache, metrics GovernanceMetrics, opts ReleaseOptions) ReleaseService {
	if runtimeCache == nil {
		runtimeCache = cache.NewNoop()
	}
	return &releaseService{
		store:     store,
		log:       baseLog.With("service", "ReleaseService"),
		validator: validator,
		cache:     runtimeCache,
		metrics:   metricsOrNop(metrics),
		opts:      opts,
	}
}

func (s *releaseService) ValidateVersion(ctx context.Context, packCode string, versionNo int) (*types.ValidationResult, error) {
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
	res := s.validate(v)
	return &res, nil
}

func (s *releaseService) validate(v *types.PackVersion) types.ValidationResult {
	if s.validator == nil {
		return types.ValidationResult{Valid: true, Issues: []string{}}
	}
	issues := s.validator.Validate(v.ContentJSON)
	if issues == nil {
		issues = []string{}
	}
	return types.ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// ReleaseVersion checks submission and approval completeness, then replaces
// the binding for (pack, environment). Gating reads and the binding write run
// in one atomic unit.
func (s *releaseService) ReleaseVersion(ctx context.Context, in types.ReleaseRequest) (*types.ReleaseBinding, error) {
	if err := requireText("packCode", in.PackCode); err != nil {
		return nil, err
	}
	if err := requireVersionNo(in.VersionNo); err != nil {
		return nil, err
	}
	if err := requireEnvironment(in.Environment); err != nil {
		return nil, err
	}
	if err := requireText("releasedBy", in.ReleasedBy); err != nil {
		return nil, err
	}

	var out *types.ReleaseBinding
	err := s.store.Atomic(ctx, func(tx repos.Store) error {
		v, err := tx.GetPackVersion(ctx, in.PackCode, in.VersionNo)
		if err != nil {
			return err
		}
		if v == nil {
			return pkgerrors.ErrNotFound
		}
		sub, err := tx.GetSubmission(ctx, in.PackCode, in.VersionNo)
		if err != nil {
			return err
		}
		if sub == nil {
			return pkgerrors.ReleaseNotReady(pkgerrors.ReasonSubmissionRequired)
		}
		approvals, err := tx.ListApprovals(ctx, in.PackCode, in.VersionNo)
		if err != nil {
			return err
		}
		if !governance.FullyApproved(approvals) {
			return pkgerrors.ReleaseNotReady(pkgerrors.ReasonApprovalIncomplete)
		}
		if s.opts.RequireValidContent {
			if res := s.validate(v); !res.Valid {
				return pkgerrors.ValidationFailed(res.Issues)
			}
		}
		b, err := tx.SetReleaseBinding(ctx, types.ReleaseBinding{
			PackCode:        in.PackCode,
			Environment:     in.Environment,
			ActiveVersionNo: in.VersionNo,
			ReleasedBy:      in.ReleasedBy,
		})
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		s.observeRejected(in, err)
		return nil, err
	}

	// The binding is committed. A failed invalidation is surfaced so the caller
	// retries; re-releasing the same version is idempotent.
	if err := s.cache.Delete(ctx, RuntimeCacheKey(in.PackCode, in.Environment)); err != nil {
		s.log.Error("runtime cache invalidation failed", "pack_code", in.PackCode, "environment", in.Environment, "error", err)
		return nil, fmt.Errorf("invalidate runtime cache: %w", err)
	}

	s.metrics.IncRelease(string(in.Environment))
	s.log.Info("version released",
		"pack_code", in.PackCode,
		"version_no", in.VersionNo,
		"environment", in.Environment,
		"released_by", in.ReleasedBy,
	)
	return out, nil
}

func (s *releaseService) observeRejected(in types.ReleaseRequest, err error) {
	var reason string
	var notReady *pkgerrors.ReleaseNotReadyError
	switch {
	case errors.As(err, &notReady):
		reason = notReady.Reason
	case errors.Is(err, pkgerrors.ErrValidationFailed):
		reason = reasonValidationFailed
	default:
		return
	}
	s.metrics.IncRejectedTransition(reason)
	s.log.Warn("release rejected",
		"pack_code", in.PackCode,
		"version_no", in.VersionNo,
		"environment", in.Environment,
		"reason", reason,
	)
}

func (s *releaseService) GetActiveVersionNo(ctx context.Context, packCode string, env types.Environment) (int, bool, error) {
	if err := requireText("packCode", packCode); err != nil {
		return 0, false, err
	}
	if err := requireEnvironment(env); err != nil {
		return 0, false, err
	}
	b, err := s.store.GetReleaseBinding(ctx, packCode, env)
	if err != nil {
		return 0, false, err
	}
	if b == nil {
		return 0, false, nil
	}
	return b.ActiveVersionNo, true, nil
}

func (s *releaseService) ListReleaseBindings(ctx context.Context, packCode string) ([]*types.ReleaseBinding, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	return s.store.ListReleaseBindings(ctx, packCode)
}
