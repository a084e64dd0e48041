package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNetwork marks a backend that could not be reached.
var ErrNetwork = errors.New("network error")

// RetryableError marks a failure worth another attempt, such as a dropped
// connection or a 5xx response.
type RetryableError struct{ Err error }

// Retryable wraps err so that [Retry] tries again. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry executes fn up to attempts times, doubling delay after every
// retryable failure. Errors not wrapped with [Retryable] are returned at once.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

// Connection attempts made by backends that talk to a server.
const (
	connectAttempts = 3
	connectDelay    = 200 * time.Millisecond
)

// connect runs ping with retries and reports a persistent failure as
// [ErrNetwork] naming the backend and address.
func connect(ctx context.Context, backend, addr string, ping func(context.Context) error) error {
	err := Retry(ctx, connectAttempts, connectDelay, func() error {
		return Retryable(ping(ctx))
	})
	if err == nil || ctx.Err() != nil {
		return err
	}
	return fmt.Errorf("%w: %s at %s: %v", ErrNetwork, backend, addr, errors.Unwrap(err))
}
