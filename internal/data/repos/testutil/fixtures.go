package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/yungbote/config-center/internal/data/repos"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
)

// SampleContent is a minimal domain pack that passes the default validator.
const SampleContent = `{"id":"delivery_ops","version":"1.0.0","businessLine":"delivery_ops","roleProfiles":[{"roleCode":"dispatcher","skills":[{"code":"routing","weight":0.6,"requiredLevel":3}]}],"metricProxies":[{"metricCode":"on_time_rate","definition":"on-time deliveries / total","source":"warehouse","refreshCron":"0 * * * *"}],"scorePolicies":[{"scoreType":"readiness","formula":"0.7*routing+0.3*on_time_rate","thresholds":{"high":0.8,"medium":0.5}}]}`

func SeedPack(tb testing.TB, ctx context.Context, s repos.Store, packCode string) *types.Pack {
	tb.Helper()
	p, err := s.CreatePack(ctx, types.NewPack{PackCode: packCode, Name: packCode + " pack"})
	if err != nil {
		tb.Fatalf("seed pack: %v", err)
	}
	return p
}

func SeedVersion(tb testing.TB, ctx context.Context, s repos.Store, packCode string) *types.PackVersion {
	tb.Helper()
	v, err := s.CreatePackVersion(ctx, types.NewPackVersion{
		PackCode:      packCode,
		SchemaVersion: "1.0.0",
		ChangeNote:    "seed",
		CreatedBy:     "alice",
		ContentJSON:   json.RawMessage(SampleContent),
	})
	if err != nil {
		tb.Fatalf("seed version: %v", err)
	}
	return v
}

// SeedApprovals appends one approval per decision, following the stage order.
func SeedApprovals(tb testing.TB, ctx context.Context, s repos.Store, packCode string, versionNo int, decisions ...types.Decision) {
	tb.Helper()
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, d := range decisions {
		stage, ok := governance.ExpectedStage(i)
		if !ok {
			tb.Fatalf("seed approvals: no stage at position %d", i)
		}
		_, err := s.AppendApproval(ctx, packCode, versionNo, i, types.ApprovalRecord{
			Stage:      stage,
			Decision:   d,
			Comment:    "ok",
			Reviewer:   "reviewer-" + string(stage),
			ReviewedAt: at.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			tb.Fatalf("seed approval %s: %v", stage, err)
		}
	}
}
