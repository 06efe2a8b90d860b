package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/config-center/internal/data/repos"
	"github.com/yungbote/config-center/internal/data/repos/memory"
	"github.com/yungbote/config-center/internal/data/repos/relational"
	"github.com/yungbote/config-center/internal/data/repos/testutil"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	"github.com/yungbote/config-center/pkg/domainpack"
)

type backend struct {
	name string
	open func(t *testing.T) repos.Store
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) repos.Store { return memory.New(testutil.Logger(t)) }},
		{"sqlite", func(t *testing.T) repos.Store { return relational.New(testutil.SQLiteDB(t), testutil.Logger(t)) }},
	}
}

// forEachBackend runs fn once per store backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, store repos.Store)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) { fn(t, b.open(t)) })
	}
}

// stepClock returns a deterministic clock that advances one second per call.
func stepClock() Clock {
	var mu sync.Mutex
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Second)
		return at
	}
}

func seqIDs() IDFunc {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
	}
}

type recordingMetrics struct {
	mu        sync.Mutex
	approvals map[string]int
	releases  map[string]int
	rejected  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{approvals: map[string]int{}, releases: map[string]int{}, rejected: map[string]int{}}
}

func (m *recordingMetrics) IncApproval(stage, decision string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals[stage+":"+decision]++
}

func (m *recordingMetrics) IncRelease(env string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[env]++
}

func (m *recordingMetrics) IncRejectedTransition(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func newTestEngine(t *testing.T, store repos.Store, opts EngineOptions) *Engine {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = stepClock()
	}
	if opts.NewID == nil {
		opts.NewID = seqIDs()
	}
	if opts.Validator == nil {
		opts.Validator = domainpack.NewValidator()
	}
	return NewEngine(store, testutil.Logger(t), opts)
}

func mustPackVersion(t *testing.T, ctx context.Context, e *Engine, packCode string) *types.PackVersion {
	t.Helper()
	if p, _ := e.Packs.GetPack(ctx, packCode); p == nil {
		if _, err := e.Packs.CreatePack(ctx, types.NewPack{PackCode: packCode, Name: packCode}); err != nil {
			t.Fatalf("CreatePack: %v", err)
		}
	}
	v, err := e.Packs.CreatePackVersion(ctx, types.NewPackVersion{
		PackCode:      packCode,
		SchemaVersion: "1.0.0",
		ChangeNote:    "init",
		CreatedBy:     "alice",
		ContentJSON:   json.RawMessage(testutil.SampleContent),
	})
	if err != nil {
		t.Fatalf("CreatePackVersion: %v", err)
	}
	return v
}

func approve(t *testing.T, ctx context.Context, e *Engine, packCode string, versionNo int, stage types.Stage, decision types.Decision) (*types.ApprovalRecord, error) {
	t.Helper()
	return e.Approvals.CreateApproval(ctx, types.NewApproval{
		PackCode:  packCode,
		VersionNo: versionNo,
		Stage:     stage,
		Decision:  decision,
		Comment:   "reviewed",
		Reviewer:  "reviewer-" + string(stage),
	})
}

func approveAll(t *testing.T, ctx context.Context, e *Engine, packCode string, versionNo int) {
	t.Helper()
	for _, st := range governance.StageOrder {
		if _, err := approve(t, ctx, e, packCode, versionNo, st, governance.DecisionApproved); err != nil {
			t.Fatalf("approve %s: %v", st, err)
		}
	}
}

func jsonString(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

// canonical renders v the way snapshots are stored, with sorted keys.
func canonical(t *testing.T, v any) string {
	t.Helper()
	raw, err := governance.Snapshot(v)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return string(raw)
}

func governanceNewPack(code string) types.NewPack {
	return types.NewPack{PackCode: code, Name: code}
}

func governanceNewVersion(code string) types.NewPackVersion {
	return types.NewPackVersion{
		PackCode:      code,
		SchemaVersion: "1.0.0",
		CreatedBy:     "alice",
		ContentJSON:   json.RawMessage(testutil.SampleContent),
	}
}

func governanceNewApproval(stage types.Stage, decision types.Decision) types.NewApproval {
	return types.NewApproval{PackCode: "p", VersionNo: 1, Stage: stage, Decision: decision, Reviewer: "r"}
}
