package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("retry: invalid session configuration")

	// ErrCancelled is reported when the owner cancels a session before it finishes.
	ErrCancelled = errors.New("retry: session cancelled")

	// ErrAlreadyStarted is returned when Start is called on a session that left the idle state.
	ErrAlreadyStarted = errors.New("retry: session already started")

	// ErrNotFinished is returned by Session.Result while the session is still in flight.
	ErrNotFinished = errors.New("retry: session not finished")
)

// ConfigError reports invalid session parameters. It is returned at construction and never retried.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("retry: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ExhaustedError is the failure of the final permitted attempt.
type ExhaustedError struct {
	// Attempts is the total number of invocations made.
	Attempts int
	// Err is the error returned by the last invocation.
	Err error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
