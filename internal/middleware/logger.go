package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ZapLogger returns a middleware that logs HTTP requests using zap logger.
// API and websocket paths log at info, server errors at error, the rest at debug.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"clientIP", c.ClientIP(),
		}
		if p := Principal(c); p != nil {
			kv = append(kv, "user_id", p.UserID)
		}
		if id, ok := traceIDOf(c); ok {
			kv = append(kv, "trace_id", id)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			sugar.Errorw("HTTP", kv...)
		case strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/ws/"):
			sugar.Infow("HTTP", kv...)
		default:
			sugar.Debugw("HTTP", kv...)
		}
	}
}
