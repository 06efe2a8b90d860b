package repos

import (
	"context"

	types "github.com/yungbote/config-center/internal/domain"
)

// Store is the storage backend contract of the governance engine. Every
// implementation must produce identical results for identical call sequences.
//
// Lookups return (nil, nil) when the entity is absent. Writes that reference a
// missing pack or version return errors.ErrNotFound; a duplicate pack code
// returns errors.ErrAlreadyExists; a lost race on a unique slot returns
// errors.ErrConflict.
type Store interface {
	CreatePack(ctx context.Context, in types.NewPack) (*types.Pack, error)
	GetPack(ctx context.Context, packCode string) (*types.Pack, error)

	CreatePackVersion(ctx context.Context, in types.NewPackVersion) (*types.PackVersion, error)
	GetPackVersion(ctx context.Context, packCode string, versionNo int) (*types.PackVersion, error)
	ListPackVersions(ctx context.Context, packCode string) ([]*types.PackVersion, error)

	SubmitPackVersion(ctx context.Context, packCode string, versionNo int, submittedBy string) (*types.SubmittedPackVersion, error)
	GetSubmission(ctx context.Context, packCode string, versionNo int) (*types.SubmittedPackVersion, error)

	// AppendApproval stores rec at position seq of the version's ledger. seq
	// must equal the current ledger length, otherwise ErrConflict.
	AppendApproval(ctx context.Context, packCode string, versionNo int, seq int, rec types.ApprovalRecord) (*types.ApprovalRecord, error)
	ListApprovals(ctx context.Context, packCode string, versionNo int) ([]*types.ApprovalRecord, error)

	SetReleaseBinding(ctx context.Context, b types.ReleaseBinding) (*types.ReleaseBinding, error)
	GetReleaseBinding(ctx context.Context, packCode string, env types.Environment) (*types.ReleaseBinding, error)
	ListReleaseBindings(ctx context.Context, packCode string) ([]*types.ReleaseBinding, error)

	WriteAudit(ctx context.Context, rec types.AuditLogRecord) (*types.AuditLogRecord, error)
	ListAudit(ctx context.Context) ([]*types.AuditLogRecord, error)

	// Atomic runs fn against a view of the store whose writes commit together.
	Atomic(ctx context.Context, fn func(tx Store) error) error

	Close() error
}
