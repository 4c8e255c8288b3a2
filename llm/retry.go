package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Policy bounds a retried operation: attempt count, per-attempt deadline, and
// capped exponential backoff between attempts.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first. Values
	// below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the backoff delay after the first failed attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay. The delay after attempt n (0-indexed)
	// is min(BaseDelay * 2^n, MaxDelay).
	MaxDelay time.Duration

	// Timeout bounds each individual attempt. Zero means no per-attempt
	// deadline beyond the caller's context.
	Timeout time.Duration
}

// PolicyFromConfig derives a retry policy from request configuration.
func PolicyFromConfig(cfg Config) Policy {
	return Policy{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		Timeout:     cfg.Timeout,
	}
}

// AttemptFunc is a single provider invocation. It must honor ctx cancellation
// and must not retry internally.
type AttemptFunc func(ctx context.Context) (*Completion, error)

// Outcome is the structured result of a retried operation.
type Outcome struct {
	// Completion is set only when an attempt succeeded.
	Completion *Completion

	// Attempts is the number of attempts actually made.
	Attempts int

	// LatencyMS is wall-clock time across all attempts and backoff sleeps.
	LatencyMS int64

	// Err is the error of the last attempt when all attempts failed.
	Err error
}

// Executor retries an attempt function under a Policy. It is stateless and
// safe for unsynchronized concurrent use.
type Executor struct {
	logger zerolog.Logger
}

// NewExecutor creates a retry executor.
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{
		logger: logger.With().Str("component", "retryExecutor").Logger(),
	}
}

// Do invokes attempt up to policy.MaxAttempts times, sleeping between failed
// attempts but never before the first. Non-retryable errors stop immediately.
func (e *Executor) Do(ctx context.Context, policy Policy, attempt AttemptFunc) *Outcome {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.BaseDelay
	eb.Multiplier = 2.0
	eb.MaxInterval = policy.MaxDelay
	eb.MaxElapsedTime = 0
	eb.RandomizationFactor = 0 // pure exponential, so retry timing is reproducible
	eb.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxAttempts-1)), ctx)

	start := time.Now()
	var (
		attempts int
		result   *Completion
		lastErr  error
	)

	operation := func() error {
		attempts++

		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
			defer cancel()
		}

		completion, err := attempt(attemptCtx)
		if err != nil {
			err = classifyAttemptError(attemptCtx, err)
			lastErr = err
			if !IsRetryableError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if completion == nil || completion.Text == "" {
			lastErr = NewExtractionError("provider returned empty content")
			return lastErr
		}

		result = completion
		return nil
	}

	notify := func(err error, delay time.Duration) {
		e.logger.Warn().
			Err(err).
			Int("attempt", attempts).
			Int("max_attempts", maxAttempts).
			Dur("retry_in", delay).
			Msg("LLM attempt failed, retrying")
	}

	err := backoff.RetryNotify(operation, b, notify)

	outcome := &Outcome{
		Attempts:  attempts,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		// Prefer the classified attempt error; backoff may hand back a bare
		// context error when the caller's context expired mid-backoff.
		if lastErr != nil {
			outcome.Err = lastErr
		} else {
			outcome.Err = err
		}
		return outcome
	}

	outcome.Completion = result
	return outcome
}

// classifyAttemptError maps deadline expiry onto the timeout error type so
// retry and reporting treat it uniformly with provider-reported timeouts.
func classifyAttemptError(attemptCtx context.Context, err error) error {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return NewTimeoutError("attempt timed out", err)
	}
	return err
}
