package retry

import (
	"context"
	"fmt"

	"github.com/aravindh-murugesan/retrysentry-go/internal/policy"
)

// Do runs op in a session and blocks until it finishes.
//
// It returns the value on success, an *ExhaustedError wrapping the last failure when the retries
// run out, and an error matching ErrCancelled when ctx ends first. The session never outlives the call.
func Do[T any](
	ctx context.Context,
	op Operation[T],
	p policy.BackoffPolicy,
	maxAttempts int,
	options ...Option,
) (T, error) {
	var zero T

	s, err := Start(ctx, op, p, maxAttempts, options...)
	if err != nil {
		return zero, err
	}
	defer s.Cancel()

	// The session is bound to ctx, so it finishes as soon as ctx ends.
	<-s.Done()

	o, err := s.Result()
	if err != nil {
		return zero, err
	}

	switch o.State {
	case StateSucceeded:
		return o.Value, nil
	case StateCancelled:
		if cause := context.Cause(ctx); cause != nil {
			return zero, fmt.Errorf("%w: %w", ErrCancelled, cause)
		}
		return zero, ErrCancelled
	default:
		return zero, o.Err
	}
}

// DoErr is Do for operations that only report an error.
func DoErr(
	ctx context.Context,
	op func(ctx context.Context) error,
	p policy.BackoffPolicy,
	maxAttempts int,
	options ...Option,
) error {
	if op == nil {
		return &ConfigError{Field: "operation", Value: nil, Reason: "can't be nil"}
	}
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, p, maxAttempts, options...)
	return err
}
