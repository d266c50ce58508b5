package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
)

// publicStatKeys are the settings the homepage counters read.
var publicStatKeys = []string{"events_organized", "happy_attendees", "cities_covered"}

// ---------------- SETTINGS (admin) ----------------
func GetSettings(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		settings, err := env.Settings.GetAll(ctx)
		if err != nil {
			respondError(c, err, "settings", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

func UpdateSettings(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var values map[string]any
		if err := c.ShouldBindJSON(&values); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(values) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no settings to update"})
			return
		}

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		if err := env.Settings.SetMany(ctx, values); err != nil {
			respondError(c, err, "settings", "update")
			return
		}
		settings, err := env.Settings.GetAll(ctx)
		if err != nil {
			respondError(c, err, "settings", "fetch")
			return
		}
		logger.Log.Info("[settings] updated", "keys", len(values))
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

// ---------------- STATS (public) ----------------
func SiteStats(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		settings, err := env.Settings.GetAll(ctx)
		if err != nil {
			respondError(c, err, "stats", "fetch")
			return
		}
		summary, err := env.Testimonials.AverageRating(ctx)
		if err != nil {
			respondError(c, err, "stats", "fetch")
			return
		}

		stats := gin.H{
			"average_rating": summary.AverageRating,
			"total_ratings":  summary.TotalRatings,
		}
		for _, key := range publicStatKeys {
			stats[key] = settings[key]
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}
