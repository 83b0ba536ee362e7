package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger returns a zap-based request logging middleware. Socket sessions are logged
// once they close, at debug level, since they last as long as the connection.
func Logger(logger *zap.Logger, wsPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
		}
		if path == wsPath {
			logger.Debug("websocket session", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
