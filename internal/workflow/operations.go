package workflow

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/aravindh-murugesan/retrysentry-go/internal/retry"
)

// ErrService is the failure reported by the demo operations.
var ErrService = errors.New("unexpected error in service")

// FailingOperation returns an operation that fails on every invocation.
func FailingOperation() retry.Operation[string] {
	return func(ctx context.Context) (string, error) {
		return "", ErrService
	}
}

// FlakyOperation returns an operation that fails the first failures invocations and then
// returns value. The returned operation is safe for concurrent use.
func FlakyOperation(failures int, value string) retry.Operation[string] {
	var calls atomic.Int64
	return func(ctx context.Context) (string, error) {
		if calls.Add(1) <= int64(failures) {
			return "", ErrService
		}
		return value, nil
	}
}
