package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. Byte-range fetches wrap
// network timeouts and 5xx responses in this type; anything else (a 404,
// a host without range support, a parse failure) is permanent and must
// not be reissued.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, fails permanently, or attempts runs
// out. Only errors carrying [RetryableError] are reissued; the delay
// between attempts doubles each time. When every attempt fails the last
// error is returned, and a context cancelled mid-backoff returns
// ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; ; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.As(err, new(*RetryableError)) {
			return err
		}
		lastErr = err
		if i == attempts-1 {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
