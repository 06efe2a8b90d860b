// Package storetest is the conformance suite every repos.Store backend runs.
// Assertions compare JSON output verbatim so backends cannot drift apart.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/config-center/internal/data/repos"
	"github.com/yungbote/config-center/internal/data/repos/testutil"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
)

type Harness struct {
	// New returns an empty store owned by t.
	New func(t *testing.T) repos.Store
	// Concurrent enables tests that call the store from several goroutines.
	Concurrent bool
}

func Run(t *testing.T, h Harness) {
	t.Run("CreatePackDuplicate", func(t *testing.T) { testCreatePackDuplicate(t, h.New(t)) })
	t.Run("GetPackMissing", func(t *testing.T) { testGetPackMissing(t, h.New(t)) })
	t.Run("VersionNumbering", func(t *testing.T) { testVersionNumbering(t, h.New(t)) })
	t.Run("VersionContentCanonical", func(t *testing.T) { testVersionContentCanonical(t, h.New(t)) })
	t.Run("VersionMissingPack", func(t *testing.T) { testVersionMissingPack(t, h.New(t)) })
	t.Run("Submission", func(t *testing.T) { testSubmission(t, h.New(t)) })
	t.Run("ApprovalLedger", func(t *testing.T) { testApprovalLedger(t, h.New(t)) })
	t.Run("ReleaseBindingReplace", func(t *testing.T) { testReleaseBindingReplace(t, h.New(t)) })
	t.Run("Audit", func(t *testing.T) { testAudit(t, h.New(t)) })
	t.Run("AtomicRollback", func(t *testing.T) { testAtomicRollback(t, h.New(t)) })
	t.Run("AtomicCommit", func(t *testing.T) { testAtomicCommit(t, h.New(t)) })
	if h.Concurrent {
		t.Run("ApprovalSlotRace", func(t *testing.T) { testApprovalSlotRace(t, h.New(t)) })
	}
}

func jsonOf(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func testCreatePackDuplicate(t *testing.T, s repos.Store) {
	ctx := context.Background()
	p, err := s.CreatePack(ctx, types.NewPack{PackCode: "delivery_ops", Name: "Delivery Ops"})
	require.NoError(t, err)
	require.JSONEq(t, `{"packCode":"delivery_ops","name":"Delivery Ops","status":"draft"}`, jsonOf(t, p))

	_, err = s.CreatePack(ctx, types.NewPack{PackCode: "delivery_ops", Name: "Other"})
	require.ErrorIs(t, err, pkgerrors.ErrAlreadyExists)

	got, err := s.GetPack(ctx, "delivery_ops")
	require.NoError(t, err)
	require.Equal(t, "Delivery Ops", got.Name)
}

func testGetPackMissing(t *testing.T, s repos.Store) {
	ctx := context.Background()
	p, err := s.GetPack(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, p)

	v, err := s.GetPackVersion(ctx, "nope", 1)
	require.NoError(t, err)
	require.Nil(t, v)

	list, err := s.ListPackVersions(ctx, "nope")
	require.NoError(t, err)
	require.Empty(t, list)
}

func testVersionNumbering(t *testing.T, s repos.Store) {
	ctx := context.Background()
	testutil.SeedPack(t, ctx, s, "a")
	testutil.SeedPack(t, ctx, s, "b")
	for i := 1; i <= 4; i++ {
		v := testutil.SeedVersion(t, ctx, s, "a")
		require.Equal(t, i, v.VersionNo)
	}
	v := testutil.SeedVersion(t, ctx, s, "b")
	require.Equal(t, 1, v.VersionNo)

	list, err := s.ListPackVersions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i, v := range list {
		require.Equal(t, i+1, v.VersionNo)
	}
}

func testVersionContentCanonical(t *testing.T, s repos.Store) {
	ctx := context.Background()
	testutil.SeedPack(t, ctx, s, "p")
	v, err := s.CreatePackVersion(ctx, types.NewPackVersion{
		PackCode:      "p",
		SchemaVersion: "1.0.0",
		ChangeNote:    "init",
		CreatedBy:     "alice",
		ContentJSON:   json.RawMessage(`{ "b": 1.50, "a": {"y": [2, "two"], "x": null} }`),
	})
	require.NoError(t, err)

	want := `{"packCode":"p","versionNo":1,"schemaVersion":"1.0.0","changeNote":"init","createdBy":"alice","contentJson":{"a":{"x":null,"y":[2,"two"]},"b":1.50}}`
	require.Equal(t, want, jsonOf(t, v))

	got, err := s.GetPackVersion(ctx, "p", 1)
	require.NoError(t, err)
	require.Equal(t, want, jsonOf(t, got))
}

func testVersionMissingPack(t *testing.T, s repos.Store) {
	_, err := s.CreatePackVersion(context.Background(), types.NewPackVersion{
		PackCode:    "ghost",
		CreatedBy:   "alice",
		ContentJSON: json.RawMessage(`{}`),
	})
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func testSubmission(t *testing.T, s repos.Store) {
	ctx := context.Background()
	_, err := s.SubmitPackVersion(ctx, "p", 1, "alice")
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)

	testutil.SeedPack(t, ctx, s, "p")
	testutil.SeedVersion(t, ctx, s, "p")

	sub, err := s.GetSubmission(ctx, "p", 1)
	require.NoError(t, err)
	require.Nil(t, sub)

	sub, err = s.SubmitPackVersion(ctx, "p", 1, "alice")
	require.NoError(t, err)
	require.Equal(t, `{"packCode":"p","versionNo":1,"submittedBy":"alice","status":"submitted"}`, jsonOf(t, sub))

	_, err = s.SubmitPackVersion(ctx, "p", 1, "bob")
	require.NoError(t, err)
	sub, err = s.GetSubmission(ctx, "p", 1)
	require.NoError(t, err)
	require.Equal(t, "bob", sub.SubmittedBy)

	_, err = s.SubmitPackVersion(ctx, "p", 2, "alice")
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func testApprovalLedger(t *testing.T, s repos.Store) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := types.ApprovalRecord{
		Stage:      governance.StageHRReview,
		Decision:   governance.DecisionApproved,
		Comment:    "fine",
		Reviewer:   "hr-lead",
		ReviewedAt: at,
	}
	_, err := s.AppendApproval(ctx, "p", 1, 0, rec)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)

	list, err := s.ListApprovals(ctx, "p", 1)
	require.NoError(t, err)
	require.Empty(t, list)

	testutil.SeedPack(t, ctx, s, "p")
	testutil.SeedVersion(t, ctx, s, "p")

	got, err := s.AppendApproval(ctx, "p", 1, 0, rec)
	require.NoError(t, err)
	require.Equal(t, `{"stage":"hr_review","decision":"approved","comment":"fine","reviewer":"hr-lead","reviewedAt":"2024-05-01T09:00:00Z"}`, jsonOf(t, got))

	// Position 0 is taken; position 2 skips one.
	_, err = s.AppendApproval(ctx, "p", 1, 0, rec)
	require.ErrorIs(t, err, pkgerrors.ErrConflict)
	_, err = s.AppendApproval(ctx, "p", 1, 2, rec)
	require.ErrorIs(t, err, pkgerrors.ErrConflict)

	rec.Stage = governance.StageBusinessReview
	rec.Decision = governance.DecisionRejected
	rec.ReviewedAt = at.Add(time.Minute)
	_, err = s.AppendApproval(ctx, "p", 1, 1, rec)
	require.NoError(t, err)

	list, err = s.ListApprovals(ctx, "p", 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, governance.StageHRReview, list[0].Stage)
	require.Equal(t, governance.StageBusinessReview, list[1].Stage)
	require.Equal(t, governance.StateBlocked, governance.StateOf(list))
}

func testReleaseBindingReplace(t *testing.T, s repos.Store) {
	ctx := context.Background()
	_, err := s.SetReleaseBinding(ctx, types.ReleaseBinding{PackCode: "p", Environment: governance.EnvProd, ActiveVersionNo: 1, ReleasedBy: "bot"})
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)

	testutil.SeedPack(t, ctx, s, "p")
	testutil.SeedVersion(t, ctx, s, "p")
	testutil.SeedVersion(t, ctx, s, "p")

	b, err := s.SetReleaseBinding(ctx, types.ReleaseBinding{PackCode: "p", Environment: governance.EnvProd, ActiveVersionNo: 1, ReleasedBy: "bot"})
	require.NoError(t, err)
	require.Equal(t, `{"packCode":"p","environment":"prod","activeVersionNo":1,"releasedBy":"bot"}`, jsonOf(t, b))

	_, err = s.SetReleaseBinding(ctx, types.ReleaseBinding{PackCode: "p", Environment: governance.EnvProd, ActiveVersionNo: 2, ReleasedBy: "carol"})
	require.NoError(t, err)
	_, err = s.SetReleaseBinding(ctx, types.ReleaseBinding{PackCode: "p", Environment: governance.EnvDev, ActiveVersionNo: 1, ReleasedBy: "bot"})
	require.NoError(t, err)

	got, err := s.GetReleaseBinding(ctx, "p", governance.EnvProd)
	require.NoError(t, err)
	require.Equal(t, 2, got.ActiveVersionNo)
	require.Equal(t, "carol", got.ReleasedBy)

	missing, err := s.GetReleaseBinding(ctx, "p", governance.EnvStaging)
	require.NoError(t, err)
	require.Nil(t, missing)

	list, err := s.ListReleaseBindings(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, governance.EnvDev, list[0].Environment)
	require.Equal(t, governance.EnvProd, list[1].Environment)

	v1, err := s.GetPackVersion(ctx, "p", 1)
	require.NoError(t, err)
	require.NotNil(t, v1)
}

func testAudit(t *testing.T, s repos.Store) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	first, err := s.WriteAudit(ctx, types.AuditLogRecord{
		ID:           "11111111-1111-1111-1111-111111111111",
		Actor:        "alice",
		Action:       governance.ActionPackVersionSubmitted,
		ResourceType: governance.ResourceTypePackVersion,
		ResourceID:   "p:1",
		AfterJSON:    json.RawMessage(`{"versionNo":1, "packCode":"p"}`),
		CreatedAt:    at,
	})
	require.NoError(t, err)
	require.Equal(t, `{"id":"11111111-1111-1111-1111-111111111111","actor":"alice","action":"pack_version.submitted","resourceType":"pack_version","resourceId":"p:1","afterJson":{"packCode":"p","versionNo":1},"createdAt":"2024-05-01T09:00:00Z"}`, jsonOf(t, first))

	_, err = s.WriteAudit(ctx, types.AuditLogRecord{
		ID:           "22222222-2222-2222-2222-222222222222",
		Actor:        "hr-lead",
		Action:       governance.ActionApprovalRecordCreated,
		ResourceType: governance.ResourceTypeApprovalRecord,
		ResourceID:   "p:1",
		BeforeJSON:   json.RawMessage(`{"state":"no_approvals"}`),
		AfterJSON:    json.RawMessage(`{"stage":"hr_review"}`),
		CreatedAt:    at,
	})
	require.NoError(t, err)

	_, err = s.WriteAudit(ctx, types.AuditLogRecord{ID: "11111111-1111-1111-1111-111111111111", Actor: "x", Action: "y", ResourceType: "z", ResourceID: "w", CreatedAt: at})
	require.ErrorIs(t, err, pkgerrors.ErrConflict)

	list, err := s.ListAudit(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, jsonOf(t, first), jsonOf(t, list[0]))
	require.Nil(t, list[0].BeforeJSON)
	require.Equal(t, `{"state":"no_approvals"}`, string(list[1].BeforeJSON))
}

func testAtomicRollback(t *testing.T, s repos.Store) {
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx repos.Store) error {
		if _, err := tx.CreatePack(ctx, types.NewPack{PackCode: "p", Name: "P"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.GetPack(ctx, "p")
	require.NoError(t, err)
	require.Nil(t, p)
}

func testAtomicCommit(t *testing.T, s repos.Store) {
	ctx := context.Background()
	err := s.Atomic(ctx, func(tx repos.Store) error {
		if _, err := tx.CreatePack(ctx, types.NewPack{PackCode: "p", Name: "P"}); err != nil {
			return err
		}
		_, err := tx.CreatePackVersion(ctx, types.NewPackVersion{PackCode: "p", CreatedBy: "alice", ContentJSON: json.RawMessage(`{}`)})
		return err
	})
	require.NoError(t, err)

	v, err := s.GetPackVersion(ctx, "p", 1)
	require.NoError(t, err)
	require.NotNil(t, v)
}

func testApprovalSlotRace(t *testing.T, s repos.Store) {
	ctx := context.Background()
	testutil.SeedPack(t, ctx, s, "p")
	testutil.SeedVersion(t, ctx, s, "p")

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AppendApproval(ctx, "p", 1, 0, types.ApprovalRecord{
				Stage:      governance.StageHRReview,
				Decision:   governance.DecisionApproved,
				Reviewer:   "hr",
				ReviewedAt: time.Now().UTC(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, pkgerrors.ErrConflict):
				conflicts++
			default:
				t.Errorf("append: unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, ok)
	require.Equal(t, writers-1, conflicts)

	list, err := s.ListApprovals(ctx, "p", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
