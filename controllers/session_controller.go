package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
	middleware "github.com/phillip/culture-events-go/middleware"
)

// ---------------- LOGIN ----------------
func CreateSession(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		ip := c.ClientIP()
		if env.Admin.Blocked(ctx, ip) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many failed attempts, try again later"})
			return
		}

		token, expires, err := env.Admin.Login(ctx, ip, input.Password)
		if errors.Is(err, middleware.ErrBadCredentials) {
			logger.Log.Warn("[auth] admin login failed", "ip", ip)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err != nil {
			respondError(c, err, "session", "create")
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expires})
	}
}
