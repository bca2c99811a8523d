package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-enhancer/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.POST("/api/v1/enhance", func(c *gin.Context) {
		c.Set(EnhanceIDKey, "enh-1")
		c.Set(PDFAvailableKey, false)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enhance", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "method", "path", "route", "duration_ms", "status", "enhance_id", "pdf_available"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["msg"] != "request.complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["request_id"] != "req-123" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["enhance_id"] != "enh-1" {
		t.Fatalf("unexpected enhance_id: %v", payload["enhance_id"])
	}
	if payload["pdf_available"] != false {
		t.Fatalf("unexpected pdf_available: %v", payload["pdf_available"])
	}
}

func TestLoggingSkipsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	router := gin.New()
	router.Use(Logging(), CORS(nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodOptions, "/api/v1/enhance", nil))

	if buf.Len() != 0 {
		t.Fatalf("expected no log for OPTIONS, got %s", buf.String())
	}
}
