package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend wraps every failure of a shared backend (redis, mongo). The
// pipeline treats it as a cache miss and keeps going.
var ErrBackend = errors.New("cache backend unavailable")

// transientError marks a backend failure worth retrying.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err as transient. A nil error stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsRetryable reports whether err was marked by [Retryable].
func IsRetryable(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Backend calls are attempted RetryAttempts times; the pause starts at
// RetryDelay and doubles after each transient failure.
var (
	RetryAttempts = 3
	RetryDelay    = 100 * time.Millisecond
)

// RetryWithBackoff runs fn until it succeeds, fails permanently or runs
// out of attempts, and returns the last error.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := RetryDelay
	err := fn()
	for attempt := 1; attempt < RetryAttempts && IsRetryable(err); attempt++ {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		err = fn()
	}
	return err
}
