package relational

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	"github.com/yungbote/config-center/internal/domain/records"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/pkg/dbctx"
	"github.com/yungbote/config-center/internal/platform/logger"
)

// Store is the durable backend over the governance tables. The schema must
// already be migrated (see data/db.Migrate).
type Store struct {
	db   *gorm.DB
	log  *logger.Logger
	inTx bool
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("repo", "RelationalStore")}
}

var _ repos.Store = (*Store)(nil)

func (s *Store) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx, Tx: s.db.WithContext(ctx)}
}

// withTx runs fn inside a transaction, joining the enclosing one when the store
// is already an Atomic view.
func (s *Store) withTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if s.inTx {
		return fn(s.dbc(ctx))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

func (s *Store) CreatePack(ctx context.Context, in types.NewPack) (*types.Pack, error) {
	now := time.Now().UTC()
	row := &records.DomainPack{
		ID:        uuid.New(),
		PackCode:  in.PackCode,
		Name:      in.Name,
		Status:    governance.PackStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.dbc(ctx).Tx.Create(row).Error; err != nil {
		return nil, mapError("create pack", err, pkgerrors.ErrAlreadyExists)
	}
	return packFromRow(row), nil
}

func (s *Store) GetPack(ctx context.Context, packCode string) (*types.Pack, error) {
	row, err := getPackRow(s.dbc(ctx), packCode)
	if err != nil || row == nil {
		return nil, err
	}
	return packFromRow(row), nil
}

func getPackRow(dbc dbctx.Context, packCode string) (*records.DomainPack, error) {
	var row records.DomainPack
	err := dbc.Tx.Where("pack_code = ?", packCode).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// CreatePackVersion numbers the version count+1 inside a transaction. A
// concurrent writer that took the same number surfaces as ErrConflict through
// the (pack_code, version_no) unique index.
func (s *Store) CreatePackVersion(ctx context.Context, in types.NewPackVersion) (*types.PackVersion, error) {
	content, err := governance.CanonicalJSON(in.ContentJSON)
	if err != nil {
		return nil, pkgerrors.Invalid("contentJson: %v", err)
	}
	var out *types.PackVersion
	err = s.withTx(ctx, func(dbc dbctx.Context) error {
		pack, err := getPackRow(dbc, in.PackCode)
		if err != nil {
			return err
		}
		if pack == nil {
			return pkgerrors.ErrNotFound
		}
		var count int64
		if err := dbc.Tx.Model(&records.DomainPackVersion{}).
			Where("pack_code = ?", in.PackCode).
			Count(&count).Error; err != nil {
			return err
		}
		row := &records.DomainPackVersion{
			ID:            uuid.New(),
			PackCode:      in.PackCode,
			VersionNo:     int(count) + 1,
			SchemaVersion: in.SchemaVersion,
			ChangeNote:    in.ChangeNote,
			CreatedBy:     in.CreatedBy,
			ContentJSON:   datatypes.JSON(content),
			CreatedAt:     time.Now().UTC(),
		}
		if err := dbc.Tx.Create(row).Error; err != nil {
			return err
		}
		out, err = versionFromRow(row)
		return err
	})
	if err != nil {
		return nil, mapError("create pack version", err, pkgerrors.ErrConflict)
	}
	return out, nil
}

func (s *Store) GetPackVersion(ctx context.Context, packCode string, versionNo int) (*types.PackVersion, error) {
	row, err := getVersionRow(s.dbc(ctx), packCode, versionNo)
	if err != nil || row == nil {
		return nil, err
	}
	return versionFromRow(row)
}

func getVersionRow(dbc dbctx.Context, packCode string, versionNo int) (*records.DomainPackVersion, error) {
	var row records.DomainPackVersion
	err := dbc.Tx.Where("pack_code = ? AND version_no = ?", packCode, versionNo).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func requireVersion(dbc dbctx.Context, packCode string, versionNo int) error {
	var count int64
	if err := dbc.Tx.Model(&records.DomainPackVersion{}).
		Where("pack_code = ? AND version_no = ?", packCode, versionNo).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (s *Store) ListPackVersions(ctx context.Context, packCode string) ([]*types.PackVersion, error) {
	var rows []*records.DomainPackVersion
	if err := s.dbc(ctx).Tx.
		Where("pack_code = ?", packCode).
		Order("version_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.PackVersion, 0, len(rows))
	for _, row := range rows {
		v, err := versionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// SubmitPackVersion upserts the single submission fact for the version.
func (s *Store) SubmitPackVersion(ctx context.Context, packCode string, versionNo int, submittedBy string) (*types.SubmittedPackVersion, error) {
	row := &records.SubmittedPackVersion{
		PackCode:    packCode,
		VersionNo:   versionNo,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Now().UTC(),
	}
	err := s.withTx(ctx, func(dbc dbctx.Context) error {
		if err := requireVersion(dbc, packCode, versionNo); err != nil {
			return err
		}
		return dbc.Tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pack_code"}, {Name: "version_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"submitted_by", "submitted_at"}),
		}).Create(row).Error
	})
	if err != nil {
		return nil, mapError("submit pack version", err, nil)
	}
	return submissionFromRow(row), nil
}

func (s *Store) GetSubmission(ctx context.Context, packCode string, versionNo int) (*types.SubmittedPackVersion, error) {
	var row records.SubmittedPackVersion
	err := s.dbc(ctx).Tx.Where("pack_code = ? AND version_no = ?", packCode, versionNo).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return submissionFromRow(&row), nil
}

// AppendApproval inserts at position seq. The (pack_code, version_no, seq)
// unique index rejects a second writer for the same position.
func (s *Store) AppendApproval(ctx context.Context, packCode string, versionNo int, seq int, rec types.ApprovalRecord) (*types.ApprovalRecord, error) {
	row := &records.ApprovalRecord{
		ID:         uuid.New(),
		PackCode:   packCode,
		VersionNo:  versionNo,
		Seq:        seq,
		Stage:      string(rec.Stage),
		Decision:   string(rec.Decision),
		Comment:    rec.Comment,
		Reviewer:   rec.Reviewer,
		ReviewedAt: rec.ReviewedAt.UTC(),
	}
	err := s.withTx(ctx, func(dbc dbctx.Context) error {
		if err := requireVersion(dbc, packCode, versionNo); err != nil {
			return err
		}
		var count int64
		if err := dbc.Tx.Model(&records.ApprovalRecord{}).
			Where("pack_code = ? AND version_no = ?", packCode, versionNo).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) != seq {
			return pkgerrors.ErrConflict
		}
		return dbc.Tx.Create(row).Error
	})
	if err != nil {
		return nil, mapError("append approval", err, pkgerrors.ErrConflict)
	}
	return approvalFromRow(row), nil
}

func (s *Store) ListApprovals(ctx context.Context, packCode string, versionNo int) ([]*types.ApprovalRecord, error) {
	var rows []*records.ApprovalRecord
	if err := s.dbc(ctx).Tx.
		Where("pack_code = ? AND version_no = ?", packCode, versionNo).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.ApprovalRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, approvalFromRow(row))
	}
	return out, nil
}

// SetReleaseBinding replaces the binding for (pack_code, environment).
func (s *Store) SetReleaseBinding(ctx context.Context, b types.ReleaseBinding) (*types.ReleaseBinding, error) {
	row := &records.ReleaseBinding{
		ID:              uuid.New(),
		PackCode:        b.PackCode,
		Environment:     string(b.Environment),
		ActiveVersionNo: b.ActiveVersionNo,
		ReleasedBy:      b.ReleasedBy,
		ReleasedAt:      time.Now().UTC(),
	}
	err := s.withTx(ctx, func(dbc dbctx.Context) error {
		if err := requireVersion(dbc, b.PackCode, b.ActiveVersionNo); err != nil {
			return err
		}
		return dbc.Tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pack_code"}, {Name: "environment"}},
			DoUpdates: clause.AssignmentColumns([]string{"active_version_no", "released_by", "released_at"}),
		}).Create(row).Error
	})
	if err != nil {
		return nil, mapError("set release binding", err, nil)
	}
	return bindingFromRow(row), nil
}

func (s *Store) GetReleaseBinding(ctx context.Context, packCode string, env types.Environment) (*types.ReleaseBinding, error) {
	var row records.ReleaseBinding
	err := s.dbc(ctx).Tx.Where("pack_code = ? AND environment = ?", packCode, string(env)).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return bindingFromRow(&row), nil
}

func (s *Store) ListReleaseBindings(ctx context.Context, packCode string) ([]*types.ReleaseBinding, error) {
	var rows []*records.ReleaseBinding
	if err := s.dbc(ctx).Tx.
		Where("pack_code = ?", packCode).
		Order("environment ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.ReleaseBinding, 0, len(rows))
	for _, row := range rows {
		out = append(out, bindingFromRow(row))
	}
	return out, nil
}

func (s *Store) WriteAudit(ctx context.Context, rec types.AuditLogRecord) (*types.AuditLogRecord, error) {
	before, err := snapshotColumn(rec.BeforeJSON)
	if err != nil {
		return nil, err
	}
	after, err := snapshotColumn(rec.AfterJSON)
	if err != nil {
		return nil, err
	}
	row := &records.ConfigAuditLog{
		ID:           rec.ID,
		Actor:        rec.Actor,
		Action:       rec.Action,
		ResourceType: rec.ResourceType,
		ResourceID:   rec.ResourceID,
		BeforeJSON:   before,
		AfterJSON:    after,
		CreatedAt:    rec.CreatedAt.UTC(),
	}
	if err := s.dbc(ctx).Tx.Create(row).Error; err != nil {
		return nil, mapError("write audit", err, pkgerrors.ErrConflict)
	}
	return auditFromRow(row)
}

func (s *Store) ListAudit(ctx context.Context) ([]*types.AuditLogRecord, error) {
	var rows []*records.ConfigAuditLog
	if err := s.dbc(ctx).Tx.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.AuditLogRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := auditFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) Atomic(ctx context.Context, fn func(tx repos.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log, inTx: true})
	})
}

// Close is a no-op; the gorm handle belongs to data/db.Service.
func (s *Store) Close() error { return nil }

// Absent snapshots are stored as the JSON literal null so the column never
// holds SQL NULL.
func snapshotColumn(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 {
		return datatypes.JSON("null"), nil
	}
	out, err := governance.CanonicalJSON(raw)
	if err != nil {
		return nil, pkgerrors.Invalid("audit snapshot: %v", err)
	}
	return datatypes.JSON(out), nil
}
