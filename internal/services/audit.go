package services

import (
	"context"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/platform/logger"
)

// AuditService appends to and reads the governance audit log. Only submit and
// approval creation write to it.
type AuditService interface {
	Write(ctx context.Context, entry types.AuditEntry) (*types.AuditLogRecord, error)
	// WriteIn appends through st, typically the transactional view of an Atomic block.
	WriteIn(ctx context.Context, st repos.Store, entry types.AuditEntry) (*types.AuditLogRecord, error)
	List(ctx context.Context) ([]*types.AuditLogRecord, error)
}

type auditService struct {
	store repos.Store
	log   *logger.Logger
	now   Clock
	newID IDFunc
}

func NewAuditService(store repos.Store, baseLog *logger.Logger, now Clock, newID IDFunc) AuditService {
	if now == nil {
		now = SystemClock
	}
	if newID == nil {
		newID = NewUUID
	}
	return &auditService{
		store: store,
		log:   baseLog.With("service", "AuditService"),
		now:   now,
		newID: newID,
	}
}

func (s *auditService) Write(ctx context.Context, entry types.AuditEntry) (*types.AuditLogRecord, error) {
	return s.WriteIn(ctx, s.store, entry)
}

func (s *auditService) WriteIn(ctx context.Context, st repos.Store, entry types.AuditEntry) (*types.AuditLogRecord, error) {
	for _, f := range [][2]string{
		{"actor", entry.Actor},
		{"action", entry.Action},
		{"resourceType", entry.ResourceType},
		{"resourceId", entry.ResourceID},
	} {
		if err := requireText(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	rec, err := st.WriteAudit(ctx, types.AuditLogRecord{
		ID:           s.newID(),
		Actor:        entry.Actor,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		BeforeJSON:   entry.BeforeJSON,
		AfterJSON:    entry.AfterJSON,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("audit record written", "action", rec.Action, "resource_id", rec.ResourceID, "audit_id", rec.ID)
	return rec, nil
}

func (s *auditService) List(ctx context.Context) ([]*types.AuditLogRecord, error) {
	return s.store.ListAudit(ctx)
}
