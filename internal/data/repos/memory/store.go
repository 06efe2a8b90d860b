package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
	"github.com/yungbote/config-center/internal/platform/logger"
)

type versionKey struct {
	packCode  string
	versionNo int
}

type bindingKey struct {
	packCode string
	env      types.Environment
}

// tables is the volatile state owned by one Store instance.
type tables struct {
	packs       map[string]types.Pack
	versions    map[string][]types.PackVersion
	submissions map[versionKey]types.SubmittedPackVersion
	approvals   map[versionKey][]types.ApprovalRecord
	bindings    map[bindingKey]types.ReleaseBinding
	audit       []types.AuditLogRecord
	auditIDs    map[string]struct{}
}

func newTables() *tables {
	return &tables{
		packs:       map[string]types.Pack{},
		versions:    map[string][]types.PackVersion{},
		submissions: map[versionKey]types.SubmittedPackVersion{},
		approvals:   map[versionKey][]types.ApprovalRecord{},
		bindings:    map[bindingKey]types.ReleaseBinding{},
		auditIDs:    map[string]struct{}{},
	}
}

// clone copies the table maps; entity values are never mutated in place so a
// shallow copy of each slice is enough.
func (t *tables) clone() *tables {
	out := newTables()
	for k, v := range t.packs {
		out.packs[k] = v
	}
	for k, v := range t.versions {
		out.versions[k] = append([]types.PackVersion(nil), v...)
	}
	for k, v := range t.submissions {
		out.submissions[k] = v
	}
	for k, v := range t.approvals {
		out.approvals[k] = append([]types.ApprovalRecord(nil), v...)
	}
	for k, v := range t.bindings {
		out.bindings[k] = v
	}
	out.audit = append([]types.AuditLogRecord(nil), t.audit...)
	for id := range t.auditIDs {
		out.auditIDs[id] = struct{}{}
	}
	return out
}

// Store is the volatile backend. All state lives on the instance.
type Store struct {
	mu   *sync.RWMutex
	t    *tables
	log  *logger.Logger
	inTx bool
}

func New(baseLog *logger.Logger) *Store {
	return &Store{
		mu:  &sync.RWMutex{},
		t:   newTables(),
		log: baseLog.With("repo", "MemoryStore"),
	}
}

var _ repos.Store = (*Store)(nil)

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) CreatePack(ctx context.Context, in types.NewPack) (*types.Pack, error) {
	defer s.lock()()
	if _, ok := s.t.packs[in.PackCode]; ok {
		return nil, pkgerrors.ErrAlreadyExists
	}
	p := types.Pack{PackCode: in.PackCode, Name: in.Name, Status: governance.PackStatusDraft}
	s.t.packs[in.PackCode] = p
	s.t.versions[in.PackCode] = []types.PackVersion{}
	return &p, nil
}

func (s *Store) GetPack(ctx context.Context, packCode string) (*types.Pack, error) {
	defer s.rlock()()
	p, ok := s.t.packs[packCode]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) CreatePackVersion(ctx context.Context, in types.NewPackVersion) (*types.PackVersion, error) {
	content, err := governance.CanonicalJSON(in.ContentJSON)
	if err != nil {
		return nil, pkgerrors.Invalid("contentJson: %v", err)
	}
	defer s.lock()()
	list, ok := s.t.versions[in.PackCode]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	v := types.PackVersion{
		PackCode:      in.PackCode,
		VersionNo:     len(list) + 1,
		SchemaVersion: in.SchemaVersion,
		ChangeNote:    in.ChangeNote,
		CreatedBy:     in.CreatedBy,
		ContentJSON:   content,
	}
	s.t.versions[in.PackCode] = append(list, v)
	return copyVersion(v), nil
}

func (s *Store) GetPackVersion(ctx context.Context, packCode string, versionNo int) (*types.PackVersion, error) {
	defer s.rlock()()
	list := s.t.versions[packCode]
	if versionNo < 1 || versionNo > len(list) {
		return nil, nil
	}
	return copyVersion(list[versionNo-1]), nil
}

func (s *Store) ListPackVersions(ctx context.Context, packCode string) ([]*types.PackVersion, error) {
	defer s.rlock()()
	list := s.t.versions[packCode]
	out := make([]*types.PackVersion, 0, len(list))
	for _, v := range list {
		out = append(out, copyVersion(v))
	}
	return out, nil
}

func (s *Store) SubmitPackVersion(ctx context.Context, packCode string, versionNo int, submittedBy string) (*types.SubmittedPackVersion, error) {
	defer s.lock()()
	if !s.hasVersion(packCode, versionNo) {
		return nil, pkgerrors.ErrNotFound
	}
	sub := types.SubmittedPackVersion{
		PackCode:    packCode,
		VersionNo:   versionNo,
		SubmittedBy: submittedBy,
		Status:      governance.SubmissionStatusSubmitted,
	}
	s.t.submissions[versionKey{packCode, versionNo}] = sub
	return &sub, nil
}

func (s *Store) GetSubmission(ctx context.Context, packCode string, versionNo int) (*types.SubmittedPackVersion, error) {
	defer s.rlock()()
	sub, ok := s.t.submissions[versionKey{packCode, versionNo}]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *Store) AppendApproval(ctx context.Context, packCode string, versionNo int, seq int, rec types.ApprovalRecord) (*types.ApprovalRecord, error) {
	defer s.lock()()
	if !s.hasVersion(packCode, versionNo) {
		return nil, pkgerrors.ErrNotFound
	}
	key := versionKey{packCode, versionNo}
	if seq != len(s.t.approvals[key]) {
		return nil, pkgerrors.ErrConflict
	}
	rec.ReviewedAt = rec.ReviewedAt.UTC()
	s.t.approvals[key] = append(s.t.approvals[key], rec)
	return &rec, nil
}

func (s *Store) ListApprovals(ctx context.Context, packCode string, versionNo int) ([]*types.ApprovalRecord, error) {
	defer s.rlock()()
	list := s.t.approvals[versionKey{packCode, versionNo}]
	out := make([]*types.ApprovalRecord, 0, len(list))
	for i := range list {
		rec := list[i]
		out = append(out, &rec)
	}
	return out, nil
}

func (s *Store) SetReleaseBinding(ctx context.Context, b types.ReleaseBinding) (*types.ReleaseBinding, error) {
	defer s.lock()()
	if !s.hasVersion(b.PackCode, b.ActiveVersionNo) {
		return nil, pkgerrors.ErrNotFound
	}
	s.t.bindings[bindingKey{b.PackCode, b.Environment}] = b
	return &b, nil
}

func (s *Store) GetReleaseBinding(ctx context.Context, packCode string, env types.Environment) (*types.ReleaseBinding, error) {
	defer s.rlock()()
	b, ok := s.t.bindings[bindingKey{packCode, env}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) ListReleaseBindings(ctx context.Context, packCode string) ([]*types.ReleaseBinding, error) {
	defer s.rlock()()
	out := []*types.ReleaseBinding{}
	for k, b := range s.t.bindings {
		if k.packCode != packCode {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Environment < out[j].Environment })
	return out, nil
}

func (s *Store) WriteAudit(ctx context.Context, rec types.AuditLogRecord) (*types.AuditLogRecord, error) {
	before, err := canonicalOptional(rec.BeforeJSON)
	if err != nil {
		return nil, err
	}
	after, err := canonicalOptional(rec.AfterJSON)
	if err != nil {
		return nil, err
	}
	rec.BeforeJSON, rec.AfterJSON = before, after
	rec.CreatedAt = rec.CreatedAt.UTC()

	defer s.lock()()
	if _, dup := s.t.auditIDs[rec.ID]; dup {
		return nil, pkgerrors.ErrConflict
	}
	s.t.audit = append(s.t.audit, rec)
	s.t.auditIDs[rec.ID] = struct{}{}
	return copyAudit(rec), nil
}

func (s *Store) ListAudit(ctx context.Context) ([]*types.AuditLogRecord, error) {
	defer s.rlock()()
	out := make([]*types.AuditLogRecord, 0, len(s.t.audit))
	for _, rec := range s.t.audit {
		out = append(out, copyAudit(rec))
	}
	return out, nil
}

// Atomic holds the write lock for the duration of fn. fn sees a scratch copy
// of the tables which replaces the live state only when fn returns nil.
func (s *Store) Atomic(ctx context.Context, fn func(tx repos.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	scratch := &Store{mu: s.mu, t: s.t.clone(), log: s.log, inTx: true}
	if err := fn(scratch); err != nil {
		return err
	}
	s.t = scratch.t
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) hasVersion(packCode string, versionNo int) bool {
	return versionNo >= 1 && versionNo <= len(s.t.versions[packCode])
}

func copyVersion(v types.PackVersion) *types.PackVersion {
	v.ContentJSON = append(json.RawMessage(nil), v.ContentJSON...)
	return &v
}

func copyAudit(rec types.AuditLogRecord) *types.AuditLogRecord {
	if rec.BeforeJSON != nil {
		rec.BeforeJSON = append(json.RawMessage(nil), rec.BeforeJSON...)
	}
	if rec.AfterJSON != nil {
		rec.AfterJSON = append(json.RawMessage(nil), rec.AfterJSON...)
	}
	return &rec
}

func canonicalOptional(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out, err := governance.CanonicalJSON(raw)
	if err != nil {
		return nil, pkgerrors.Invalid("audit snapshot: %v", err)
	}
	if string(out) == "null" {
		return nil, nil
	}
	return out, nil
}
