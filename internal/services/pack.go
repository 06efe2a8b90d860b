package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/logger"
)

// PackService owns pack identities, their version history and submission facts.
// Lookups return (nil, nil) when nothing matches.
type PackService interface {
	CreatePack(ctx context.Context, in types.NewPack) (*types.Pack, error)
	GetPack(ctx context.Context, packCode string) (*types.Pack, error)
	CreatePackVersion(ctx context.Context, in types.NewPackVersion) (*types.PackVersion, error)
	GetPackVersion(ctx context.Context, packCode string, versionNo int) (*types.PackVersion, error)
	ListPackVersions(ctx context.Context, packCode string) ([]*types.PackVersion, error)
	SubmitPackVersion(ctx context.Context, packCode string, versionNo int, submittedBy string) (*types.SubmittedPackVersion, error)
	GetSubmission(ctx context.Context, packCode string, versionNo int) (*types.SubmittedPackVersion, error)
}

type packService struct {
	store repos.Store
	log   *logger.Logger
	audit AuditService
}

func NewPackService(store repos.Store, baseLog *logger.Logger, audit AuditService) PackService {
	return &packService{
		store: store,
		log:   baseLog.With("service", "PackService"),
		audit: audit,
	}
}

func (s *packService) CreatePack(ctx context.Context, in types.NewPack) (*types.Pack, error) {
	if err := requireText("packCode", in.PackCode); err != nil {
		return nil, err
	}
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	p, err := s.store.CreatePack(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("pack created", "pack_code", p.PackCode)
	return p, nil
}

func (s *packService) GetPack(ctx context.Context, packCode string) (*types.Pack, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	return s.store.GetPack(ctx, packCode)
}

func (s *packService) CreatePackVersion(ctx context.Context, in types.NewPackVersion) (*types.PackVersion, error) {
	if err := requireText("packCode", in.PackCode); err != nil {
		return nil, err
	}
	if err := requireText("createdBy", in.CreatedBy); err != nil {
		return nil, err
	}
	if len(in.ContentJSON) == 0 {
		return nil, pkgerrors.Invalid("contentJson is required")
	}
	if !json.Valid(in.ContentJSON) {
		return nil, pkgerrors.Invalid("contentJson is not valid JSON")
	}
	v, err := s.store.CreatePackVersion(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("pack version created", "pack_code", v.PackCode, "version_no", v.VersionNo, "created_by", v.CreatedBy)
	return v, nil
}

func (s *packService) GetPackVersion(ctx context.Context, packCode string, versionNo int) (*types.PackVersion, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	if err := requireVersionNo(versionNo); err != nil {
		return nil, err
	}
	return s.store.GetPackVersion(ctx, packCode, versionNo)
}

func (s *packService) ListPackVersions(ctx context.Context, packCode string) ([]*types.PackVersion, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	return s.store.ListPackVersions(ctx, packCode)
}

// SubmitPackVersion records the submission fact and its audit record in one
// atomic unit.
func (s *packService) SubmitPackVersion(ctx context.Context, packCode string, versionNo int, submittedBy string) (*types.SubmittedPackVersion, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	if err := requireVersionNo(versionNo); err != nil {
		return nil, err
	}
	if err := requireText("submittedBy", submittedBy); err != nil {
		return nil, err
	}

	var out *types.SubmittedPackVersion
	err := s.store.Atomic(ctx, func(tx repos.Store) error {
		sub, err := tx.SubmitPackVersion(ctx, packCode, versionNo, submittedBy)
		if err != nil {
			return err
		}
		after, err := governance.Snapshot(sub)
		if err != nil {
			return fmt.Errorf("snapshot submission: %w", err)
		}
		if _, err := s.audit.WriteIn(ctx, tx, types.AuditEntry{
			Actor:        submittedBy,
			Action:       governance.ActionPackVersionSubmitted,
			ResourceType: governance.ResourceTypePackVersion,
			ResourceID:   governance.VersionKey(packCode, versionNo),
			AfterJSON:    after,
		}); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pack version submitted", "pack_code", packCode, "version_no", versionNo, "submitted_by", submittedBy)
	return out, nil
}

func (s *packService) GetSubmission(ctx context.Context, packCode string, versionNo int) (*types.SubmittedPackVersion, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	if err := requireVersionNo(versionNo); err != nil {
		return nil, err
	}
	return s.store.GetSubmission(ctx, packCode, versionNo)
}
