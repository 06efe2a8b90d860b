package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/cache"
	"github.com/yungbote/config-center/internal/platform/logger"
)

// Clock stamps approvals and audit records. Both store backends must see the
// same precision, so the default truncates to microseconds (postgres resolution).
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// IDFunc generates audit record ids.
type IDFunc func() string

func NewUUID() string { return uuid.NewString() }

// ContentValidator checks a pack payload and returns its issues, none when
// valid. The engine never interprets content beyond handing it over.
type ContentValidator interface {
	Validate(content []byte) []string
}

// GovernanceMetrics receives engine outcomes. Implemented by observability.Metrics.
type GovernanceMetrics interface {
	IncApproval(stage, decision string)
	IncRelease(environment string)
	IncRejectedTransition(reason string)
}

type nopMetrics struct{}

func (nopMetrics) IncApproval(string, string) {}
func (nopMetrics) IncRelease(string) {}
func (nopMetrics) IncRejectedTransition(string) {}

func metricsOrNop(m GovernanceMetrics) GovernanceMetrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

// Rejected transition reasons reported to GovernanceMetrics.
const (
	reasonStageMismatch    = "stage_mismatch"
	reasonBlocked          = "blocked"
	reasonWorkflowComplete = "workflow_complete"
	reasonValidationFailed = "validation_failed"
)

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return pkgerrors.Invalid("%s is required", field)
	}
	return nil
}

func requireVersionNo(n int) error {
	if n < 1 {
		return pkgerrors.Invalid("versionNo must be >= 1")
	}
	return nil
}

func requireEnvironment(env types.Environment) error {
	if !env.Valid() {
		return pkgerrors.Invalid("environment %q is not one of dev, staging, prod", string(env))
	}
	return nil
}

// Engine bundles the governance services over one store.
type Engine struct {
	Packs     PackService
	Approvals ApprovalService
	Releases  ReleaseService
	Audit     AuditService
	Runtime   RuntimeService
}

type EngineOptions struct {
	Clock     Clock
	NewID     IDFunc
	Validator ContentValidator
	Cache     cache.Cache
	CacheTTL  time.Duration
	Metrics   GovernanceMetrics
	Release   ReleaseOptions
}

func NewEngine(store repos.Store, baseLog *logger.Logger, opts EngineOptions) *Engine {
	audit := NewAuditService(store, baseLog, opts.Clock, opts.NewID)
	return &Engine{
		Packs:     NewPackService(store, baseLog, audit),
		Approvals: NewApprovalService(store, baseLog, audit, opts.Clock, opts.Metrics),
		Releases:  NewReleaseService(store, baseLog, opts.Validator, opts.Cache, opts.Metrics, opts.Release),
		Audit:     audit,
		Runtime:   NewRuntimeService(store, baseLog, opts.Cache, opts.CacheTTL),
	}
}
