package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TraceIDKey is the gin context key for the trace identifier.
	TraceIDKey = "trace_id"
	// RequestContextKey is the gin context key for RequestContext.
	RequestContextKey = "request_context"
)

// RequestContext holds client metadata recorded by the login pipeline.
type RequestContext struct {
	TraceID   string
	IP        string
	UserAgent string
}

// EnrichContext captures client metadata and the active trace id for the rest of the chain.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		var traceID string
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			traceID = sc.TraceID().String()
			c.Set(TraceIDKey, traceID)
		}

		c.Set(RequestContextKey, &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext retrieves the request metadata, falling back to the raw request.
func GetRequestContext(c *gin.Context) *RequestContext {
	if ctx, exists := c.Get(RequestContextKey); exists {
		if reqCtx, ok := ctx.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
