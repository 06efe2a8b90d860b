package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/logger"
)

type ApprovalService interface {
	// CreateApproval appends the next stage decision for a version. Stages are
	// accepted only in governance.StageOrder; a rejection blocks the version for good.
	CreateApproval(ctx context.Context, in types.NewApproval) (*types.ApprovalRecord, error)
	// ListApprovals returns the ledger in stage order, empty for unknown versions.
	ListApprovals(ctx context.Context, packCode string, versionNo int) ([]*types.ApprovalRecord, error)
}

type approvalService struct {
	store   repos.Store
	log     *logger.Logger
	audit   AuditService
	now     Clock
	metrics GovernanceMetrics
	locks   *keyLock
}

func NewApprovalService(store repos.Store, baseLog *logger.Logger, audit AuditService, now Clock, metrics GovernanceMetrics) ApprovalService {
	if now == nil {
		now = SystemClock
	}
	return &approvalService{
		store:   store,
		log:     baseLog.With("service", "ApprovalService"),
		audit:   audit,
		now:     now,
		metrics: metricsOrNop(metrics),
		locks:   newKeyLock(),
	}
}

// nextStage applies the transition rule to an existing ledger.
func nextStage(existing []*types.ApprovalRecord) (types.Stage, error) {
	for _, r := range existing {
		if r.Decision == governance.DecisionRejected {
			return "", pkgerrors.ErrBlocked
		}
	}
	stage, ok := governance.ExpectedStage(len(existing))
	if !ok {
		return "", pkgerrors.ErrWorkflowComplete
	}
	return stage, nil
}

func checkStage(existing []*types.ApprovalRecord, stage types.Stage) error {
	expected, err := nextStage(existing)
	if err != nil {
		return err
	}
	if stage != expected {
		return pkgerrors.StageMismatch(string(expected))
	}
	return nil
}

func (s *approvalService) CreateApproval(ctx context.Context, in types.NewApproval) (*types.ApprovalRecord, error) {
	if err := validateNewApproval(in); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(governance.VersionKey(in.PackCode, in.VersionNo))
	defer unlock()

	var out *types.ApprovalRecord
	err := s.store.Atomic(ctx, func(tx repos.Store) error {
		rec, err := s.appendIn(ctx, tx, in)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if errors.Is(err, pkgerrors.ErrConflict) {
		// Another process took the slot. Report what a serial caller would see.
		err = s.recheck(ctx, in, err)
	}
	if err != nil {
		s.observeRejected(in, err)
		return nil, err
	}

	s.metrics.IncApproval(string(out.Stage), string(out.Decision))
	s.log.Info("approval recorded",
		"pack_code", in.PackCode,
		"version_no", in.VersionNo,
		"stage", out.Stage,
		"decision", out.Decision,
		"reviewer", out.Reviewer,
	)
	return out, nil
}

func (s *approvalService) appendIn(ctx context.Context, tx repos.Store, in types.NewApproval) (*types.ApprovalRecord, error) {
	v, err := tx.GetPackVersion(ctx, in.PackCode, in.VersionNo)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, pkgerrors.ErrNotFound
	}
	existing, err := tx.ListApprovals(ctx, in.PackCode, in.VersionNo)
	if err != nil {
		return nil, err
	}
	if err := checkStage(existing, in.Stage); err != nil {
		return nil, err
	}

	rec, err := tx.AppendApproval(ctx, in.PackCode, in.VersionNo, len(existing), types.ApprovalRecord{
		Stage:      in.Stage,
		Decision:   in.Decision,
		Comment:    in.Comment,
		Reviewer:   in.Reviewer,
		ReviewedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	after, err := governance.Snapshot(rec)
	if err != nil {
		return nil, fmt.Errorf("snapshot approval: %w", err)
	}
	if _, err := s.audit.WriteIn(ctx, tx, types.AuditEntry{
		Actor:        in.Reviewer,
		Action:       governance.ActionApprovalRecordCreated,
		ResourceType: governance.ResourceTypeApprovalRecord,
		ResourceID:   governance.VersionKey(in.PackCode, in.VersionNo),
		AfterJSON:    after,
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *approvalService) recheck(ctx context.Context, in types.NewApproval, conflict error) error {
	existing, err := s.store.ListApprovals(ctx, in.PackCode, in.VersionNo)
	if err != nil {
		return err
	}
	if err := checkStage(existing, in.Stage); err != nil {
		return err
	}
	return conflict
}

func (s *approvalService) observeRejected(in types.NewApproval, err error) {
	var reason string
	switch {
	case errors.Is(err, pkgerrors.ErrStageMismatch):
		reason = reasonStageMismatch
	case errors.Is(err, pkgerrors.ErrBlocked):
		reason = reasonBlocked
	case errors.Is(err, pkgerrors.ErrWorkflowComplete):
		reason = reasonWorkflowComplete
	default:
		return
	}
	s.metrics.IncRejectedTransition(reason)
	s.log.Warn("approval rejected",
		"pack_code", in.PackCode,
		"version_no", in.VersionNo,
		"stage", in.Stage,
		"reason", reason,
		"error", err,
	)
}

func (s *approvalService) ListApprovals(ctx context.Context, packCode string, versionNo int) ([]*types.ApprovalRecord, error) {
	if err := requireText("packCode", packCode); err != nil {
		return nil, err
	}
	if err := requireVersionNo(versionNo); err != nil {
		return nil, err
	}
	return s.store.ListApprovals(ctx, packCode, versionNo)
}

func validateNewApproval(in types.NewApproval) error {
	if err := requireText("packCode", in.PackCode); err != nil {
		return err
	}
	if err := requireVersionNo(in.VersionNo); err != nil {
		return err
	}
	if !in.Stage.Valid() {
		return pkgerrors.Invalid("stage %q is not a review stage", string(in.Stage))
	}
	if !in.Decision.Valid() {
		return pkgerrors.Invalid("decision must be approved or rejected")
	}
	return requireText("reviewer", in.Reviewer)
}
