package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	config "github.com/phillip/culture-events-go/config"
	"github.com/phillip/culture-events-go/logger"
	"github.com/phillip/culture-events-go/metrics"
)

const (
	AdminPasswordHeader = "X-Admin-Password"

	adminSubject   = "admin"
	adminIssuer    = "culture-events"
	failureKeyRoot = "admin_fail:"
)

// AdminAuth guards the admin routes. Requests authenticate with the shared
// password header or with a session token obtained from IssueToken.
type AdminAuth struct {
	password     []byte
	passwordHash []byte
	secret       []byte
	ttl          time.Duration

	limiter     Limiter // nil disables failure counting
	maxFailures int
	window      time.Duration

	now func() time.Time
}

func NewAdminAuth(cfg *config.Config, limiter Limiter) *AdminAuth {
	return &AdminAuth{
		password:     []byte(cfg.AdminPassword),
		passwordHash: []byte(cfg.AdminPasswordHash),
		secret:       []byte(cfg.AdminSessionSecret),
		ttl:          cfg.AdminSessionTTL,
		limiter:      limiter,
		maxFailures:  cfg.AdminMaxFailures,
		window:       cfg.AdminFailureWindow,
		now:          time.Now,
	}
}

// CheckPassword prefers the bcrypt hash when one is configured.
func (a *AdminAuth) CheckPassword(pw string) bool {
	if pw == "" {
		return false
	}
	if len(a.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(pw)) == nil
	}
	if len(a.password) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pw), a.password) == 1
}

// IssueToken signs a short-lived HS256 session token.
func (a *AdminAuth) IssueToken() (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   adminSubject,
		Issuer:    adminIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expires, nil
}

func (a *AdminAuth) validToken(raw string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(adminIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	return err
}

func (a *AdminAuth) authenticate(c *gin.Context) bool {
	if pw := c.GetHeader(AdminPasswordHeader); pw != "" {
		return a.CheckPassword(pw)
	}
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return false
	}
	if err := a.validToken(raw); err != nil {
		logger.Log.Warn("[auth] rejected session token", "ip", c.ClientIP(), "error", err)
		return false
	}
	return true
}

// Blocked reports whether the client has used up its failed attempts.
// Limiter errors fail open so a Redis outage does not lock admins out.
func (a *AdminAuth) Blocked(ctx context.Context, clientIP string) bool {
	if a.limiter == nil || a.maxFailures <= 0 {
		return false
	}
	n, err := a.limiter.Count(ctx, failureKeyRoot+clientIP)
	if err != nil {
		logger.Log.Error("[auth] failure counter unavailable", "error", err)
		return false
	}
	return n >= int64(a.maxFailures)
}

// RecordFailure counts one failed attempt for clientIP.
func (a *AdminAuth) RecordFailure(ctx context.Context, clientIP string) {
	metrics.AdminAuthFailures.Inc()
	if a.limiter == nil {
		return
	}
	if _, err := a.limiter.Hit(ctx, failureKeyRoot+clientIP, a.window); err != nil {
		logger.Log.Error("[auth] could not record failed attempt", "error", err)
	}
}

// RequireAdmin aborts with 401 unless the request carries valid admin
// credentials, and with 429 once the client has failed too often.
func (a *AdminAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		if a.Blocked(ctx, ip) {
			logger.Log.Warn("[auth] admin access blocked after repeated failures", "ip", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many failed attempts, try again later"})
			return
		}

		if !a.authenticate(c) {
			a.RecordFailure(ctx, ip)
			logger.Log.Warn("[auth] admin check failed", "ip", ip, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("admin", true)
		c.Next()
	}
}

// ErrBadCredentials is returned by Login for a wrong password.
var ErrBadCredentials = errors.New("invalid admin password")

// Login exchanges the admin password for a session token.
func (a *AdminAuth) Login(ctx context.Context, clientIP, password string) (string, time.Time, error) {
	if !a.CheckPassword(password) {
		a.RecordFailure(ctx, clientIP)
		return "", time.Time{}, ErrBadCredentials
	}
	if a.limiter != nil {
		if err := a.limiter.Reset(ctx, failureKeyRoot+clientIP); err != nil {
			logger.Log.Warn("[auth] could not reset failure counter", "error", err)
		}
	}
	return a.IssueToken()
}
