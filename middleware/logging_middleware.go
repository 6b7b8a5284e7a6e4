package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
)

func LoggingMiddleware(logger outbound.LoggerPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= 500 {
			logger.WarnWithFields("Request failed", fields)
			return
		}
		logger.InfoWithFields("Request handled", fields)
	}
}
