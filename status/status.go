// Package status holds the error vocabulary shared by stores and handlers.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)

// Invalid wraps ErrValidation with a message meant for the caller.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AlreadyUsedError is returned when a ticket code is checked in a second time.
type AlreadyUsedError struct {
	TicketCode string
	UsedAt     time.Time
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("ticket %s already used at %s", e.TicketCode, e.UsedAt.UTC().Format(time.RFC3339))
}

func (e *AlreadyUsedError) Unwrap() error { return ErrConflict }

// Retryable reports whether err is a transient infrastructure failure that a
// client may safely retry.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
