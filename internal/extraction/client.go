// Package extraction turns resume text into a structured payload using an external
// text generation service.
package extraction

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/ai"
	"github.com/spigell/resume-sieve/internal/logger"
	"github.com/spigell/resume-sieve/internal/metrics"
	"github.com/spigell/resume-sieve/internal/utils"
)

const defaultMaxLogLength = 200

// Result is a parsed service reply, not yet normalized into a candidate record.
type Result struct {
	Payload  map[string]any
	Raw      string
	Attempts int
	Repaired bool
	Warnings []string
}

type Client struct {
	generator ai.Generator
	policy    ai.Policy
	logger    *zap.Logger
	maxLogLen int
}

func NewClient(generator ai.Generator, policy ai.Policy, log *zap.Logger, maxLogLength int) *Client {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Client{
		generator: generator,
		policy:    policy,
		logger:    logger.WithServiceFields(log, generator.Provider(), generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// Complete sends the prompt with retries and returns the raw reply and the number of
// attempts made. Failures are *ClientError of kind ErrServiceError or ErrServiceUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, int, error) {
	provider := c.generator.Provider()

	c.logger.Debug("extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	policy := c.policy
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("extraction service busy, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}

	var raw string
	attempts, err := policy.Do(ctx, func(ctx context.Context, _ int) error {
		started := time.Now()
		out, err := c.generator.GenerateContent(ctx, prompt)
		metrics.ExtractionDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())

		switch {
		case err == nil:
			metrics.ExtractionAttemptsTotal.WithLabelValues(provider, "success").Inc()
			raw = out
		case ai.IsTransient(err):
			metrics.ExtractionAttemptsTotal.WithLabelValues(provider, "transient").Inc()
		default:
			metrics.ExtractionAttemptsTotal.WithLabelValues(provider, "error").Inc()
		}
		return err
	})
	if err != nil {
		kind := ErrServiceError
		if errors.Is(err, ai.ErrAttemptsExhausted) || errors.Is(err, ai.ErrInterrupted) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = ErrServiceUnavailable
		}
		return "", attempts, &ClientError{Kind: kind, Attempts: attempts, Err: err}
	}

	c.logger.Debug("extraction response",
		zap.Int("attempts", attempts),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	return raw, attempts, nil
}

// ParseResume asks the service for the structured fields of the resume text.
func (c *Client) ParseResume(ctx context.Context, resumeText string) (*Result, error) {
	raw, attempts, err := c.Complete(ctx, BuildPrompt(resumeText))
	if err != nil {
		return nil, err
	}

	payload, repaired, err := Parse(raw)
	if err != nil {
		var clientErr *ClientError
		if errors.As(err, &clientErr) {
			clientErr.Attempts = attempts
		}
		return nil, err
	}

	if repaired {
		metrics.ExtractionRepairsTotal.Inc()
		c.logger.Debug("extraction reply repaired", zap.Int("attempts", attempts))
	}

	warnings := CheckSchema(payload)
	if len(warnings) > 0 {
		c.logger.Debug("extraction reply differs from schema", zap.Strings("warnings", warnings))
	}

	return &Result{
		Payload:  payload,
		Raw:      raw,
		Attempts: attempts,
		Repaired: repaired,
		Warnings: warnings,
	}, nil
}
