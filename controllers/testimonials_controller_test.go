package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testimonialBody(rating int) map[string]any {
	return map[string]any{
		"name":           "Asha",
		"email":          "Asha@Example.com",
		"event_attended": "Diwali Night",
		"rating":         rating,
		"testimonial":    "Loved every minute",
	}
}

func testimonialsRouter(env *Env) *gin.Engine {
	r := gin.New()
	r.POST("/testimonials", CreateTestimonial(env))
	return r
}

func TestCreateTestimonialOnlyFiveStars(t *testing.T) {
	te := newTestEnv(t)
	r := testimonialsRouter(te.Env)

	w := doJSON(t, r, http.MethodPost, "/testimonials", testimonialBody(4))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"only 5-star reviews are accepted"}`, w.Body.String())
	assert.Empty(t, te.testimonials.created)

	w = doJSON(t, r, http.MethodPost, "/testimonials", testimonialBody(5))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, te.testimonials.created, 1)
	assert.False(t, te.testimonials.created[0].Approved)
	assert.Equal(t, "asha@example.com", te.testimonials.created[0].Email)
}

func TestCreateTestimonialHoneypot(t *testing.T) {
	te := newTestEnv(t)
	body := testimonialBody(5)
	body["website"] = "http://spam.example"

	w := doJSON(t, testimonialsRouter(te.Env), http.MethodPost, "/testimonials", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, te.testimonials.created)
}

func TestCreateTestimonialOncePerWindow(t *testing.T) {
	te := newTestEnv(t)
	te.testimonials.recent = true

	w := doJSON(t, testimonialsRouter(te.Env), http.MethodPost, "/testimonials", testimonialBody(5))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, te.testimonials.created)
}

func TestListTestimonialsLimit(t *testing.T) {
	te := newTestEnv(t)
	r := gin.New()
	r.GET("/testimonials", ListTestimonials(te.Env))

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/testimonials?limit=3", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodGet, "/testimonials?limit=-1", nil).Code)
}
