// Package middleware provides the HTTP middleware of the warehouse API.
package middleware

import (
	"net/http"

	"github.com/erp/warehouse/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps the request id copied into span attributes
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider when set
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "warehouse",
		Enabled:     true,
	}
}

// Tracing returns the otelgin middleware followed by SpanEnricher. The span name follows
// "METHOD route_pattern", e.g. "POST /api/v1/transactions/:id/approve".
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return []gin.HandlerFunc{func(c *gin.Context) { c.Next() }}
	}
	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName, opts...),
		SpanEnricher(),
	}
}

// SpanEnricher tags the request span with the request id and, once the handler returns,
// with the kind of the domain error it reported. Server errors mark the span as failed.
// It must run inside the otelgin middleware.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := getRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Next()

		if last := c.Errors.Last(); last != nil {
			if kind := shared.KindOf(last.Err); kind != "" {
				span.SetAttributes(attribute.String("error.kind", string(kind)))
			}
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// getRequestID reads the id set by the logging middleware, falling back to the header
func getRequestID(c *gin.Context) string {
	id := c.GetString("request_id")
	if id == "" {
		id = c.GetHeader("X-Request-ID")
	}
	if len(id) > MaxRequestIDLength {
		return id[:MaxRequestIDLength]
	}
	return id
}
