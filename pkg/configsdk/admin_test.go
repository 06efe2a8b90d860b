package configsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/config-center/internal/data/repos/memory"
	"github.com/yungbote/config-center/internal/data/repos/testutil"
	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	httpserver "github.com/yungbote/config-center/internal/http"
	httpH "github.com/yungbote/config-center/internal/http/handlers"
	httpMW "github.com/yungbote/config-center/internal/http/middleware"
	"github.com/yungbote/config-center/internal/platform/logger"
	"github.com/yungbote/config-center/internal/services"
	"github.com/yungbote/config-center/pkg/domainpack"
)

// configCenter runs the real router over a memory store.
func configCenter(t *testing.T, apiKey string) (*services.Engine, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	engine := services.NewEngine(memory.New(log), log, services.EngineOptions{Validator: domainpack.NewValidator()})
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Log:              log,
		APIKeyMiddleware: httpMW.NewAPIKeyMiddleware(log, apiKey),
		PackHandler:      httpH.NewPackHandler(engine.Packs),
		ApprovalHandler:  httpH.NewApprovalHandler(engine.Approvals, engine.Audit),
		ReleaseHandler:   httpH.NewReleaseHandler(engine.Releases),
		RuntimeHandler:   httpH.NewRuntimeHandler(engine.Runtime),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return engine, srv
}

func approveAll(t *testing.T, engine *services.Engine, packCode string, versionNo int) {
	t.Helper()
	ctx := context.Background()
	if _, err := engine.Packs.SubmitPackVersion(ctx, packCode, versionNo, "alice"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for _, stage := range governance.StageOrder {
		if _, err := engine.Approvals.CreateApproval(ctx, types.NewApproval{
			PackCode: packCode, VersionNo: versionNo, Stage: stage,
			Decision: governance.DecisionApproved, Reviewer: "bob",
		}); err != nil {
			t.Fatalf("approve %s: %v", stage, err)
		}
	}
}

func TestAdminPushValidateRelease(t *testing.T) {
	engine, srv := configCenter(t, "secret-key")
	ctx := context.Background()
	admin, err := NewAdmin(Options{BaseURL: srv.URL, APIKey: "secret-key"})
	if err != nil {
		t.Fatalf("NewAdmin: %v", err)
	}

	if _, err := admin.CreatePack(ctx, "delivery_ops", "Delivery Ops"); err != nil {
		t.Fatalf("CreatePack: %v", err)
	}
	if _, err := admin.CreatePack(ctx, "delivery_ops", "Delivery Ops"); !IsAlreadyExists(err) {
		t.Fatalf("CreatePack again: want already_exists got=%v", err)
	}
	v, err := admin.CreateVersion(ctx, "delivery_ops", NewVersion{
		SchemaVersion: "1.0.0",
		CreatedBy:     "release-bot",
		ContentJSON:   json.RawMessage(testutil.SampleContent),
	})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if v.VersionNo != 1 {
		t.Fatalf("versionNo: want=1 got=%d", v.VersionNo)
	}

	_, err = admin.ValidateAndRelease(ctx, "delivery_ops", 1, "prod", "release-bot")
	var ae *APIError
	if !errors.As(err, &ae) || ae.Reason != "submission_required" {
		t.Fatalf("release before approval: want submission_required got=%v", err)
	}

	approveAll(t, engine, "delivery_ops", 1)
	b, err := admin.ValidateAndRelease(ctx, "delivery_ops", 1, "prod", "release-bot")
	if err != nil {
		t.Fatalf("ValidateAndRelease: %v", err)
	}
	want := ReleaseBinding{PackCode: "delivery_ops", Environment: "prod", ActiveVersionNo: 1, ReleasedBy: "release-bot"}
	if *b != want {
		t.Fatalf("binding: want=%+v got=%+v", want, *b)
	}

	active, err := admin.ActiveVersion(ctx, "delivery_ops", "prod")
	if err != nil {
		t.Fatalf("ActiveVersion: %v", err)
	}
	if active.VersionNo != 1 || active.Environment != "prod" {
		t.Fatalf("active: got=%+v", active)
	}
	if _, err := admin.ActiveVersion(ctx, "delivery_ops", "dev"); !IsNotFound(err) {
		t.Fatalf("ActiveVersion dev: want not found got=%v", err)
	}

	rt, _ := New(Options{BaseURL: srv.URL})
	pack, err := rt.GetActivePack(ctx, "delivery_ops", "prod")
	if err != nil {
		t.Fatalf("GetActivePack: %v", err)
	}
	if pack.BusinessLine != "delivery_ops" {
		t.Fatalf("pack: got=%+v", pack)
	}
}

func TestAdminValidateReportsIssues(t *testing.T) {
	_, srv := configCenter(t, "")
	ctx := context.Background()
	admin, _ := NewAdmin(Options{BaseURL: srv.URL})

	if _, err := admin.CreatePack(ctx, "broken", "Broken"); err != nil {
		t.Fatalf("CreatePack: %v", err)
	}
	if _, err := admin.CreateVersion(ctx, "broken", NewVersion{CreatedBy: "alice", ContentJSON: json.RawMessage(`{"id":"broken"}`)}); err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	res, err := admin.Validate(ctx, "broken", 1)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid || len(res.Issues) == 0 {
		t.Fatalf("validate: got=%+v", res)
	}

	_, err = admin.ValidateAndRelease(ctx, "broken", 1, "prod", "release-bot")
	var invalid *InvalidPackError
	if !errors.As(err, &invalid) {
		t.Fatalf("ValidateAndRelease: want InvalidPackError got=%v", err)
	}

	if _, err := admin.Validate(ctx, "broken", 7); !IsNotFound(err) {
		t.Fatalf("Validate missing version: want not found got=%v", err)
	}
}

func TestAdminRequiresAPIKey(t *testing.T) {
	_, srv := configCenter(t, "secret-key")
	admin, _ := NewAdmin(Options{BaseURL: srv.URL})

	_, err := admin.CreatePack(context.Background(), "delivery_ops", "Delivery Ops")
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != 401 {
		t.Fatalf("CreatePack without key: want 401 got=%v", err)
	}
}
