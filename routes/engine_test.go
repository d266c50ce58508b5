package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/phillip/culture-events-go/config"
	controllers "github.com/phillip/culture-events-go/controllers"
	middleware "github.com/phillip/culture-events-go/middleware"
)

type memLimiter struct {
	mu   sync.Mutex
	hits map[string]int64
}

func (m *memLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[key]++
	return m.hits[key], nil
}

func (m *memLimiter) Count(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[key], nil
}

func (m *memLimiter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hits, key)
	return nil
}

func engineWithLimiter(t *testing.T, cfg *config.Config) (http.Handler, *memLimiter) {
	t.Helper()
	r, err := NewEngine(cfg)
	require.NoError(t, err)

	lim := &memLimiter{hits: map[string]int64{}}
	env := &controllers.Env{
		Config:       cfg,
		Admin:        middleware.NewAdminAuth(cfg, lim),
		Now:          time.Now,
		HealthChecks: map[string]func(context.Context) error{},
	}
	SetupRoutes(r, env)
	return r, lim
}

func lockoutConfig() *config.Config {
	return &config.Config{
		AdminPassword:      "s3cret",
		AdminSessionSecret: "0123456789abcdef0123456789abcdef",
		AdminSessionTTL:    time.Hour,
		AdminMaxFailures:   3,
		AdminFailureWindow: 15 * time.Minute,
		CORSOrigins:        []string{"*"},
	}
}

func TestLockoutIgnoresForwardedForByDefault(t *testing.T) {
	r, lim := engineWithLimiter(t, lockoutConfig())

	codes := map[int]int{}
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set(middleware.AdminPasswordHeader, "guess")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes[w.Code]++
	}

	assert.Equal(t, 3, codes[http.StatusUnauthorized])
	assert.Equal(t, 7, codes[http.StatusTooManyRequests])
	assert.Len(t, lim.hits, 1)
	assert.Contains(t, lim.hits, "admin_fail:203.0.113.7")
}

func TestLockoutHonorsConfiguredProxy(t *testing.T) {
	cfg := lockoutConfig()
	cfg.TrustedProxies = []string{"10.1.0.0/16"}
	r, lim := engineWithLimiter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	req.Header.Set(middleware.AdminPasswordHeader, "guess")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, lim.hits, "admin_fail:198.51.100.9")
}

func TestNewEngineRejectsBadProxy(t *testing.T) {
	cfg := lockoutConfig()
	cfg.TrustedProxies = []string{"not-an-ip"}
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}
