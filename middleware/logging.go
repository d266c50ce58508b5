package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
)

// RequestLogger writes one line per request to logger.Log.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", code,
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case code >= 500:
			logger.Log.Error("[http] request", attrs...)
		case code >= 400:
			logger.Log.Warn("[http] request", attrs...)
		default:
			logger.Log.Info("[http] request", attrs...)
		}
	}
}
