package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	enhanceStartedTotal   atomic.Uint64
	enhanceCompletedTotal atomic.Uint64
	enhanceFailedTotal    atomic.Uint64
	pdfRenderFailedTotal  atomic.Uint64

	oracleFallbackTotal labeledCounter
	rateLimitedTotal    labeledCounter

	enhanceDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncEnhanceStarted increments the started counter.
func IncEnhanceStarted() {
	enhanceStartedTotal.Add(1)
}

// IncEnhanceCompleted increments the completed counter.
func IncEnhanceCompleted() {
	enhanceCompletedTotal.Add(1)
}

// IncEnhanceFailed increments the failed counter.
func IncEnhanceFailed() {
	enhanceFailedTotal.Add(1)
}

// IncPDFRenderFailed counts requests that fell back to the HTML preview only.
func IncPDFRenderFailed() {
	pdfRenderFailedTotal.Add(1)
}

// IncOracleFallback counts oracle failures that were replaced by a default,
// labelled by oracle name.
func IncOracleFallback(oracle string) {
	oracleFallbackTotal.Inc(oracle)
}

// IncRateLimited counts requests rejected with 429, labelled by rate group.
func IncRateLimited(group string) {
	rateLimitedTotal.Inc(group)
}

// ObserveEnhanceDurationMs records a pipeline duration in milliseconds.
func ObserveEnhanceDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	enhanceDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "enhance_started_total", "Total enhance requests started", enhanceStartedTotal.Load())
	writeCounter(&buf, "enhance_completed_total", "Total enhance requests completed", enhanceCompletedTotal.Load())
	writeCounter(&buf, "enhance_failed_total", "Total enhance requests failed", enhanceFailedTotal.Load())
	writeCounter(&buf, "pdf_render_failed_total", "Total PDF renders that failed", pdfRenderFailedTotal.Load())
	writeLabeledCounter(&buf, "oracle_fallback_total", "Oracle failures replaced by a fallback", "oracle", oracleFallbackTotal.Snapshot())
	writeLabeledCounter(&buf, "rate_limited_total", "Requests rejected by the rate limiter", "group", rateLimitedTotal.Snapshot())
	writeHistogram(&buf, "enhance_duration_ms", "Enhance pipeline duration in milliseconds", enhanceDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	if l.values == nil {
		l.values = map[string]uint64{}
	}
	l.values[label]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
