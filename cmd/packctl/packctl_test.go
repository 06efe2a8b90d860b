package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
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

const testKey = "ci-key"

func newCenter(t *testing.T) (*services.Engine, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	engine := services.NewEngine(memory.New(log), log, services.EngineOptions{Validator: domainpack.NewValidator()})
	srv := httptest.NewServer(httpserver.NewRouter(httpserver.RouterConfig{
		Log:              log,
		APIKeyMiddleware: httpMW.NewAPIKeyMiddleware(log, testKey),
		PackHandler:      httpH.NewPackHandler(engine.Packs),
		ApprovalHandler:  httpH.NewApprovalHandler(engine.Approvals, engine.Audit),
		ReleaseHandler:   httpH.NewReleaseHandler(engine.Releases),
		RuntimeHandler:   httpH.NewRuntimeHandler(engine.Runtime),
	}))
	t.Cleanup(srv.Close)
	return engine, srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--base-url", srv.URL, "--api-key", testKey))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPushValidateReleaseActive(t *testing.T) {
	engine, srv := newCenter(t)
	file := writeFile(t, "delivery_ops.json", testutil.SampleContent)

	out, err := run(t, srv, "push", "--pack", "delivery_ops", "--file", file, "--created-by", "ci", "--create", "Delivery Ops", "--note", "initial")
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	var pushed struct {
		PackCode  string `json:"packCode"`
		VersionNo int    `json:"versionNo"`
	}
	if err := json.Unmarshal([]byte(out), &pushed); err != nil {
		t.Fatalf("push output: %v (%s)", err, out)
	}
	if pushed.PackCode != "delivery_ops" || pushed.VersionNo != 1 {
		t.Fatalf("push: got=%+v", pushed)
	}

	// --create tolerates an existing pack.
	if _, err := run(t, srv, "push", "--pack", "delivery_ops", "--file", file, "--created-by", "ci", "--create", "Delivery Ops"); err != nil {
		t.Fatalf("second push: %v", err)
	}

	if _, err := run(t, srv, "validate", "--pack", "delivery_ops", "--version", "1"); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := run(t, srv, "release", "--pack", "delivery_ops", "--version", "1", "--env", "prod"); err == nil || !strings.Contains(err.Error(), "submission_required") {
		t.Fatalf("release before approval: want submission_required got=%v", err)
	}

	ctx := context.Background()
	if _, err := engine.Packs.SubmitPackVersion(ctx, "delivery_ops", 1, "alice"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for _, stage := range governance.StageOrder {
		if _, err := engine.Approvals.CreateApproval(ctx, types.NewApproval{
			PackCode: "delivery_ops", VersionNo: 1, Stage: stage,
			Decision: governance.DecisionApproved, Reviewer: "bob",
		}); err != nil {
			t.Fatalf("approve %s: %v", stage, err)
		}
	}

	out, err = run(t, srv, "release", "--pack", "delivery_ops", "--version", "1", "--env", "prod")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	var binding struct {
		ActiveVersionNo int    `json:"activeVersionNo"`
		ReleasedBy      string `json:"releasedBy"`
	}
	if err := json.Unmarshal([]byte(out), &binding); err != nil {
		t.Fatalf("release output: %v (%s)", err, out)
	}
	if binding.ActiveVersionNo != 1 || binding.ReleasedBy != "release-bot" {
		t.Fatalf("binding: got=%+v", binding)
	}

	out, err = run(t, srv, "active", "--pack", "delivery_ops")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if !strings.Contains(out, `"versionNo": 1`) {
		t.Fatalf("active output: got=%s", out)
	}
}

func TestValidateFailsOnIssues(t *testing.T) {
	_, srv := newCenter(t)
	file := writeFile(t, "broken.yaml", "id: broken\n")

	if _, err := run(t, srv, "push", "--pack", "broken", "--file", file, "--created-by", "ci", "--create", "Broken"); err != nil {
		t.Fatalf("push: %v", err)
	}
	out, err := run(t, srv, "validate", "--pack", "broken", "--version", "1")
	if err == nil {
		t.Fatalf("validate: expected error for invalid content")
	}
	if !strings.Contains(out, `"valid": false`) {
		t.Fatalf("validate output: got=%s", out)
	}
	if _, err := run(t, srv, "release", "--pack", "broken", "--version", "1", "--env", "prod"); err == nil {
		t.Fatalf("release: expected error for invalid content")
	}
}

func TestFlagChecks(t *testing.T) {
	_, srv := newCenter(t)
	if _, err := run(t, srv, "release", "--pack", "p", "--version", "1", "--env", "qa"); err == nil || !strings.Contains(err.Error(), "--env") {
		t.Fatalf("bad env: got=%v", err)
	}
	if _, err := run(t, srv, "validate", "--pack", "p", "--version", "0"); err == nil {
		t.Fatalf("zero version: expected error")
	}
	if _, err := run(t, srv, "release", "--pack", "p", "--env", "prod"); err == nil {
		t.Fatalf("missing --version: expected error")
	}
}

func TestLoadPackFile(t *testing.T) {
	yamlPath := writeFile(t, "pack.yml", "id: x\nversion: \"1.0.0\"\nweights:\n  - 1\n  - 0.5\n")
	got, err := loadPackFile(yamlPath)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if want := `{"id":"x","version":"1.0.0","weights":[1,0.5]}`; string(got) != want {
		t.Fatalf("yaml: want=%s got=%s", want, got)
	}

	if _, err := loadPackFile(writeFile(t, "pack.json", "{not json")); err == nil {
		t.Fatalf("json: expected error")
	}
	if _, err := loadPackFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing: expected error")
	}
}
