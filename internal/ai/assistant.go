// Package ai holds the provider-neutral contract for text generation services
// and the retry policy applied to them.
package ai

import (
	"context"
	"errors"
)

// Generator sends a single prompt to a text generation service and returns its textual reply.
// Implementations perform exactly one attempt; retries belong to the caller.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
	Provider() string
}

// TransientError marks an overload-class failure that is worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "transient error"
	}
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable. A nil error stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err, or anything it wraps, is a TransientError.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}
