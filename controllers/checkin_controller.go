package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
	"github.com/phillip/culture-events-go/metrics"
	"github.com/phillip/culture-events-go/status"
)

func checkInResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, status.ErrConflict):
		return "already_used"
	case errors.Is(err, status.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// ---------------- PREFLIGHT ----------------
func CheckInLookup(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("ticket_code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticket_code is required"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		ticket, err := env.Tickets.Lookup(ctx, code)
		if err != nil {
			respondError(c, err, "ticket", "look up")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ticket": ticket, "valid": true})
	}
}

// ---------------- CONFIRM ----------------
func CheckInConfirm(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			TicketCode string `json:"ticket_code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticket_code is required"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		ticket, err := env.Tickets.CheckIn(ctx, input.TicketCode)
		metrics.CheckIns.WithLabelValues(checkInResult(err)).Inc()
		if err != nil {
			respondError(c, err, "ticket", "check in")
			return
		}

		logger.Log.Info("[checkin] ticket admitted", "ticket", ticket.TicketCode, "event", ticket.EventID.Hex())
		c.JSON(http.StatusOK, gin.H{"ticket": ticket, "message": "Ticket checked in"})
	}
}
