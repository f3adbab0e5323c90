package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(analysisFailed.WithLabelValues("generation_failed"))
	IncAnalysisFailed("generation_failed")
	after := testutil.ToFloat64(analysisFailed.WithLabelValues("generation_failed"))
	if after-before != 1 {
		t.Fatalf("expected failed counter to grow by 1, got %v", after-before)
	}

	startedBefore := testutil.ToFloat64(analysisStarted)
	IncAnalysisStarted()
	if testutil.ToFloat64(analysisStarted)-startedBefore != 1 {
		t.Fatal("expected started counter to grow by 1")
	}
}

func TestAddTokensSkipsZero(t *testing.T) {
	AddTokens("test-provider", 12, 0)
	if got := testutil.ToFloat64(llmTokens.WithLabelValues("test-provider", "prompt")); got != 12 {
		t.Fatalf("expected 12 prompt tokens, got %v", got)
	}
	if got := testutil.ToFloat64(llmTokens.WithLabelValues("test-provider", "completion")); got != 0 {
		t.Fatalf("expected 0 completion tokens, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveAnalysisDuration(1500 * time.Millisecond)
	IncCoverLetterRegenerated("Concise")

	r := gin.New()
	r.GET("/metrics", Handler())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"resume_analyzer_analysis_duration_seconds_bucket",
		`resume_analyzer_cover_letter_regenerations_total{tone="Concise"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
