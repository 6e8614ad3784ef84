package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// OtelTracing opens one server span per REST request. Websocket upgrades are
// left out: their lifetime is the whole connection, and the chat relay
// traces each received line instead.
func OtelTracing(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	traced := otelgin.Middleware(serviceName, opts...)
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			traced(c)
			return
		}
		c.Next()
	}
}

// TraceID echoes the active trace id in the X-Trace-Id response header.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := traceIDOf(c); ok {
			c.Header("X-Trace-Id", id)
		}
		c.Next()
	}
}

func traceIDOf(c *gin.Context) (string, bool) {
	sc := trace.SpanContextFromContext(c.Request.Context())
	if !sc.IsValid() {
		return "", false
	}
	return sc.TraceID().String(), true
}
