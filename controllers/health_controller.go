package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
)

const healthTimeout = 3 * time.Second

// ---------------- HEALTH ----------------
func Health(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		healthy := true
		for name, check := range env.HealthChecks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				logger.Log.Error("[health] dependency check failed", "dependency", name, "error", err)
				checks[name] = "down"
				healthy = false
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	}
}
