package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGovernanceCounters(t *testing.T) {
	m := NewMetrics()
	m.IncApproval("hr_review", "approved")
	m.IncApproval("hr_review", "approved")
	m.IncRelease("prod")
	m.IncRejectedTransition("stage_mismatch")

	if got := testutil.ToFloat64(m.approvals.WithLabelValues("hr_review", "approved")); got != 2 {
		t.Fatalf("approvals: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.releases.WithLabelValues("prod")); got != 1 {
		t.Fatalf("releases: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("stage_mismatch")); got != 1 {
		t.Fatalf("rejected: want=1 got=%v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/packs/:packCode", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `config_center_api_requests_total{method="GET",route="/packs/:packCode",status="200"} 1`) {
		t.Fatalf("request counter missing from output:\n%s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.IncApproval("hr_review", "approved")
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.APIInflightInc()
	m.APIInflightDec()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=503 got=%d", rec.Code)
	}
}
