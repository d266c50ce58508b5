package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/culture-events-go/logger"
	"github.com/phillip/culture-events-go/status"
)

const (
	docTimeout  = 5 * time.Second
	listTimeout = 10 * time.Second
)

func withTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// respondError maps store errors onto HTTP responses. noun names the
// resource in messages, action is what the handler tried to do.
func respondError(c *gin.Context, err error, noun, action string) {
	var used *status.AlreadyUsedError
	var invalid *status.ValidationError

	switch {
	case errors.As(err, &used):
		c.JSON(http.StatusConflict, gin.H{"error": "ticket already used", "used_at": used.UsedAt})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
	case errors.Is(err, status.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, status.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": noun + " not found"})
	case errors.Is(err, status.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, status.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
	case errors.Is(err, status.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case status.Retryable(err):
		logger.Log.Warn("[api] transient failure", "action", action, "resource", noun, "error", err)
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, please retry"})
	default:
		logger.Log.Error("[api] request failed", "action", action, "resource", noun, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + action + " " + noun})
	}
}

// paramID parses :id and writes the 400 itself on failure.
func paramID(c *gin.Context, noun string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + noun + " id"})
		return primitive.NilObjectID, false
	}
	return id, true
}
