package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/monarch-reports/internal/service"
)

// WithAuthRetry runs operation at most twice. Only an unauthorized failure
// on the first attempt triggers a retry: the wrapper waits opts.Delay, calls
// relogin to obtain a fresh session, and runs operation once more. The
// second attempt's result is returned as-is.
func WithAuthRetry[T any](
	ctx context.Context,
	opts service.RetryOptions,
	relogin func(context.Context) error,
	operation func(context.Context) (T, error),
) (T, error) {
	result, err := operation(ctx)
	if err == nil || !IsUnauthorized(err) {
		return result, err
	}

	slog.Warn("Session rejected, logging in again before retry",
		"delay", opts.Delay,
		"error", err)

	var zero T
	if opts.Delay > 0 {
		timer := time.NewTimer(opts.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	if err := relogin(ctx); err != nil {
		return zero, err
	}

	return operation(ctx)
}
