package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
	models "github.com/phillip/culture-events-go/models"
	store "github.com/phillip/culture-events-go/store"
)

const (
	defaultTestimonialLimit = 6
	maxTestimonialLimit     = 50
)

// recentlySubmitted enforces one submission per email per window. The Redis
// counter is authoritative when present; the store lookup covers deployments
// without Redis and Redis outages.
func recentlySubmitted(c *gin.Context, env *Env, email string) (bool, error) {
	ctx, cancel := withTimeout(c, docTimeout)
	defer cancel()

	window := env.Config.TestimonialWindow
	if env.Limiter != nil {
		n, err := env.Limiter.Hit(ctx, "testimonial:"+email, window)
		if err == nil {
			return n > 1, nil
		}
		logger.Log.Warn("[testimonials] limiter unavailable, falling back to store", "error", err)
	}
	return env.Testimonials.SubmittedSince(ctx, email, env.Now().Add(-window))
}

// ---------------- CREATE (public) ----------------
func CreateTestimonial(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name          string `json:"name"`
			Email         string `json:"email"`
			EventAttended string `json:"event_attended"`
			Rating        int    `json:"rating"`
			Testimonial   string `json:"testimonial"`
			City          string `json:"city"`
			Website       string `json:"website"` // honeypot
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Website != "" {
			logger.Log.Info("[testimonials] honeypot tripped", "ip", c.ClientIP())
			c.JSON(http.StatusBadRequest, gin.H{"error": "submission rejected"})
			return
		}

		t := models.Testimonial{
			Name:          strings.TrimSpace(input.Name),
			Email:         strings.ToLower(strings.TrimSpace(input.Email)),
			EventAttended: strings.TrimSpace(input.EventAttended),
			Rating:        input.Rating,
			Testimonial:   strings.TrimSpace(input.Testimonial),
			City:          strings.TrimSpace(input.City),
		}
		if err := store.ValidateTestimonial(&t); err != nil {
			respondError(c, err, "testimonial", "create")
			return
		}

		limited, err := recentlySubmitted(c, env, t.Email)
		if err != nil {
			respondError(c, err, "testimonial", "create")
			return
		}
		if limited {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "you have already submitted a testimonial recently, please try again later"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Testimonials.Create(ctx, &t); err != nil {
			respondError(c, err, "testimonial", "create")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"testimonial": t,
			"message":     "Thank you! Your testimonial will appear once it is approved.",
		})
	}
}

// ---------------- LIST (public) ----------------
func ListTestimonials(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultTestimonialLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxTestimonialLimit)
		}

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		items, err := env.Testimonials.ListApproved(ctx, limit)
		if err != nil {
			respondError(c, err, "testimonials", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"testimonials": items})
	}
}

func onlyApproved(items []models.Testimonial) []models.Testimonial {
	out := make([]models.Testimonial, 0, len(items))
	for _, t := range items {
		if t.Approved {
			out = append(out, t)
		}
	}
	return out
}

// ---------------- LIST (admin) ----------------
func AdminListTestimonials(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		var (
			items []models.Testimonial
			err   error
		)
		switch c.DefaultQuery("status", "all") {
		case "pending":
			items, err = env.Testimonials.ListPending(ctx)
		case "approved":
			items, err = env.Testimonials.ListAll(ctx)
			items = onlyApproved(items)
		case "all":
			items, err = env.Testimonials.ListAll(ctx)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, approved or all"})
			return
		}
		if err != nil {
			respondError(c, err, "testimonials", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"testimonials": items})
	}
}

// ---------------- APPROVE ----------------
func ApproveTestimonial(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "testimonial")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Testimonials.Approve(ctx, id); err != nil {
			respondError(c, err, "testimonial", "approve")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Testimonial approved"})
	}
}

// ---------------- DELETE ----------------
func DeleteTestimonial(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "testimonial")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Testimonials.Delete(ctx, id); err != nil {
			respondError(c, err, "testimonial", "delete")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted"})
	}
}

// ---------------- DISTRIBUTION ----------------
func TestimonialDistribution(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		dist, err := env.Testimonials.Distribution(ctx)
		if err != nil {
			respondError(c, err, "rating distribution", "fetch")
			return
		}
		summary, err := env.Testimonials.AverageRating(ctx)
		if err != nil {
			respondError(c, err, "rating summary", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"distribution":   dist,
			"average_rating": summary.AverageRating,
			"total_ratings":  summary.TotalRatings,
		})
	}
}
