package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-enhancer/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	EnhanceIDKey    = "enhanceId"
	PDFAvailableKey = "pdfAvailable"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id, ok := c.Get(EnhanceIDKey); ok {
			fields["enhance_id"] = id
		}
		if pdf, ok := c.Get(PDFAvailableKey); ok {
			fields["pdf_available"] = pdf
		}
		telemetry.Info("request.complete", fields)
	}
}
