package toolcodec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RepairMiddleware wraps a Repairer with cross-cutting behavior (logging, recovery, timeout).
type RepairMiddleware func(Repairer) Repairer

// ChainRepairer applies middlewares to r in onion order: the first middleware is outermost.
func ChainRepairer(r Repairer, middlewares ...RepairMiddleware) Repairer {
	for i := len(middlewares) - 1; i >= 0; i-- {
		r = middlewares[i](r)
	}
	return r
}

// WithRepairLogging returns a middleware that logs start, end, duration, and errors at debug level.
func WithRepairLogging(logger *slog.Logger) RepairMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Repairer) Repairer {
		return RepairFunc(func(ctx context.Context, text string) (string, error) {
			logger.DebugContext(ctx, "repair start", "bytes", len(text))
			start := time.Now()
			out, err := next.Repair(ctx, text)
			dur := time.Since(start)
			if err != nil {
				logger.DebugContext(ctx, "repair error", "duration", dur, "error", err)
				return "", err
			}
			logger.DebugContext(ctx, "repair end", "duration", dur, "bytes", len(out))
			return out, nil
		})
	}
}

// WithRepairRecovery returns a middleware that turns a panic inside the repairer into an error.
func WithRepairRecovery() RepairMiddleware {
	return func(next Repairer) Repairer {
		return RepairFunc(func(ctx context.Context, text string) (out string, err error) {
			defer func() {
				if p := recover(); p != nil {
					out = ""
					err = &panicError{p: p}
				}
			}()
			return next.Repair(ctx, text)
		})
	}
}

// WithRepairTimeoutMiddleware returns a middleware that bounds each repair call (the Option
// WithRepairTimeout configures the same bound on an Extractor). The wrapped repairer runs in its
// own goroutine, so a repairer that ignores ctx cannot stall the caller; on expiry the call
// fails with ErrRepairTimeout. d <= 0 disables the bound.
func WithRepairTimeoutMiddleware(d time.Duration) RepairMiddleware {
	return func(next Repairer) Repairer {
		if d <= 0 {
			return next
		}
		return RepairFunc(func(ctx context.Context, text string) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			type result struct {
				out string
				err error
			}
			done := make(chan result, 1)
			go func() {
				out, err := next.Repair(ctx, text)
				done <- result{out: out, err: err}
			}()
			select {
			case r := <-done:
				if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return "", fmt.Errorf("%w after %s", ErrRepairTimeout, d)
				}
				return r.out, r.err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return "", fmt.Errorf("%w after %s", ErrRepairTimeout, d)
				}
				return "", ctx.Err()
			}
		})
	}
}
