package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	IncEnhanceStarted()
	IncEnhanceCompleted()
	IncPDFRenderFailed()
	IncOracleFallback("score")
	IncOracleFallback("score")
	IncRateLimited("ENHANCE")
	ObserveEnhanceDurationMs(300)

	out := Render()
	for _, want := range []string{
		"# TYPE enhance_started_total counter",
		"pdf_render_failed_total ",
		`oracle_fallback_total{oracle="score"} `,
		`rate_limited_total{group="ENHANCE"} 1`,
		`enhance_duration_ms_bucket{le="500"}`,
		`enhance_duration_ms_bucket{le="+Inf"}`,
		"enhance_duration_ms_count ",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{1, 10})
	h.Observe(0.5)
	h.Observe(5)
	h.Observe(50)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("count = %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts %v", snap.counts)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "x", "help", snap)
	if !strings.Contains(buf.String(), "x_bucket{le=\"10\"} 2\n") {
		t.Fatalf("expected cumulative bucket, got:\n%s", buf.String())
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("content type = %q", w.Header().Get("Content-Type"))
	}
}
