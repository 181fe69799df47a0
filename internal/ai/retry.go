package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/resume-sieve/internal/utils"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

var (
	// ErrAttemptsExhausted is returned when every attempt failed with a transient error.
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")
	// ErrInterrupted is returned when the context ends while waiting between attempts.
	ErrInterrupted = errors.New("retry interrupted")
)

// Backoff computes the wait after the given failed attempt (1-based).
type Backoff func(base time.Duration, attempt int) time.Duration

// Linear waits base*attempt.
func Linear(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

// Constant always waits base.
func Constant(base time.Duration, _ int) time.Duration {
	return base
}

// Policy describes how a call is retried on transient failures.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     Backoff

	// Wait sleeps between attempts. Defaults to utils.WaitFor.
	Wait func(ctx context.Context, d time.Duration) error
	// OnRetry, when set, is called before every wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy is three attempts with a linear 2s backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Backoff:     Linear,
	}
}

// Delay returns the wait that follows the failed attempt number.
func (p Policy) Delay(attempt int) time.Duration {
	backoff := p.Backoff
	if backoff == nil {
		backoff = Linear
	}
	return backoff(p.BaseDelay, attempt)
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Do runs fn until it succeeds, fails with a non-transient error or the attempts run out.
// It returns the number of attempts made. Non-transient errors are returned as is;
// exhaustion and interruption wrap ErrAttemptsExhausted and ErrInterrupted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	wait := p.Wait
	if wait == nil {
		wait = utils.WaitFor
	}

	maxAttempts := p.attempts()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		if !IsTransient(err) {
			return attempt, err
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if waitErr := wait(ctx, delay); waitErr != nil {
			return attempt, fmt.Errorf("%w before attempt %d: %w (last error: %v)", ErrInterrupted, attempt+1, waitErr, lastErr)
		}
	}

	return maxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, maxAttempts, lastErr)
}
