package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vibecurator/internal/metrics"
)

// requestIDHeader carries the correlation id on requests and responses.
const requestIDHeader = "X-Request-ID"

// slowRequestThreshold marks requests worth an access-log line even
// when they succeed.
const slowRequestThreshold = 500 * time.Millisecond

// RequestID assigns each request a correlation id, honoring one the
// client already sent, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// Observe records per-route request counts and latencies and writes an
// access log line for failed or slow requests.
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, route, status, elapsed)

		if status >= http.StatusBadRequest || elapsed >= slowRequestThreshold {
			slog.Warn("HTTP request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", status,
				"elapsed_ms", elapsed.Milliseconds(),
				"request_id", c.GetString("request_id"))
		}
	}
}
