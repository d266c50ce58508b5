package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type newsletterInput struct {
	Email string `json:"email"`
}

// ---------------- SUBSCRIBE ----------------
// A duplicate address is not an error: the caller gets 200 with subscribed=false.
func Subscribe(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input newsletterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		subscribed, err := env.Newsletter.Subscribe(ctx, input.Email)
		if err != nil {
			respondError(c, err, "subscription", "create")
			return
		}
		if !subscribed {
			c.JSON(http.StatusOK, gin.H{"subscribed": false, "message": "already subscribed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"subscribed": true, "message": "subscribed"})
	}
}

// ---------------- UNSUBSCRIBE ----------------
func Unsubscribe(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input newsletterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Newsletter.Unsubscribe(ctx, input.Email); err != nil {
			respondError(c, err, "subscription", "cancel")
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscribed": false, "message": "unsubscribed"})
	}
}

// ---------------- LIST (admin) ----------------
func AdminListSubscribers(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		subs, err := env.Newsletter.List(ctx, c.Query("active") == "true")
		if err != nil {
			respondError(c, err, "subscribers", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscribers": subs, "total": len(subs)})
	}
}
