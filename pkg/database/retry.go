package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/lib/pq"
)

// RetryPolicy bounds how often transient store failures are retried.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// IsTransient reports connection loss, serialization failures and deadlocks.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08": // connection exception
			return true
		}
		switch pqErr.Code {
		case "40001", "40P01", "57P01":
			return true
		}
	}
	return false
}

// WithRetry runs fn until it succeeds, fails permanently, or the attempts run out.
// fn must be safe to repeat: a read, or a whole transaction that rolled back.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.Delay * time.Duration(i+1)):
		}
	}
	return err
}
