// Package wait polls a condition until it holds or a deadline passes.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrTimeout is returned when the condition did not hold before the timeout
var ErrTimeout = errors.New("timed out waiting for condition")

const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Condition reports whether the awaited state has been reached.
// A non-nil error aborts the wait immediately.
type Condition func(ctx context.Context) (bool, error)

// Until evaluates cond every interval until it returns true, it fails, or
// timeout elapses. The first evaluation happens immediately and the last one
// happens at the deadline, even when it falls between two ticks.
func Until(ctx context.Context, timeout, interval time.Duration, cond Condition) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	parent := ctx
	deadline := time.Now().Add(timeout)
	// the check at the deadline may still need up to one interval to answer
	ctx, cancel := context.WithDeadline(parent, deadline.Add(interval))
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	attempts := 0

	for {
		if err := parent.Err(); err != nil {
			return err
		}

		delay := limiter.Reserve().Delay()
		final := false
		if remaining := time.Until(deadline); delay >= remaining {
			delay = max(remaining, 0)
			final = true
		}
		if err := sleep(parent, delay); err != nil {
			return err
		}
		attempts++

		ok, err := cond(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return timeoutErr(parent, timeout, attempts, err)
			}
			return err
		}
		if ok {
			if attempts > 1 {
				log.Debug().Int("attempts", attempts).Msg("Condition met after polling")
			}
			return nil
		}
		if final {
			return timeoutErr(parent, timeout, attempts, context.DeadlineExceeded)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// timeoutErr maps a failed wait to ErrTimeout unless the caller's own context ended
func timeoutErr(parent context.Context, timeout time.Duration, attempts int, cause error) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w after %s (%d checks): %v", ErrTimeout, timeout, attempts, cause)
}
