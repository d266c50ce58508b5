package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	config "github.com/phillip/culture-events-go/config"
	controllers "github.com/phillip/culture-events-go/controllers"
	middleware "github.com/phillip/culture-events-go/middleware"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AdminPassword:      "s3cret",
		AdminSessionSecret: "0123456789abcdef0123456789abcdef",
		AdminSessionTTL:    time.Hour,
	}
	env := &controllers.Env{
		Config:       cfg,
		Admin:        middleware.NewAdminAuth(cfg, nil),
		Now:          time.Now,
		HealthChecks: map[string]func(context.Context) error{},
	}
	r := gin.New()
	SetupRoutes(r, env)
	return r
}

func TestAdminRoutesAreGated(t *testing.T) {
	r := testRouter()

	for _, rt := range r.Routes() {
		if rt.Path == "/admin/session" {
			continue
		}
		if strings.HasPrefix(rt.Path, "/admin") || rt.Path == "/upload" {
			req := httptest.NewRequest(rt.Method, rt.Path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.Method, rt.Path)
		}
	}
}

func TestPublicRoutesRegistered(t *testing.T) {
	r := testRouter()

	registered := map[string]bool{}
	for _, rt := range r.Routes() {
		registered[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{
		"GET /events",
		"GET /events/:slug",
		"POST /orders",
		"GET /orders/tickets.pdf",
		"POST /testimonials",
		"POST /newsletter",
		"GET /gallery/themes/:slug",
		"POST /admin/check-in/confirm",
	} {
		assert.True(t, registered[want], want)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
