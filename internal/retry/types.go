package retry

import (
	"context"
	"time"
)

// Operation is the unit of work protected by a session.
// It receives a context that is cancelled as soon as the session is cancelled or finishes.
type Operation[T any] func(ctx context.Context) (T, error)

// State is a step of the session lifecycle.
type State int

const (
	// StateIdle means the session was constructed but not started.
	StateIdle State = iota
	// StateRunning means an attempt is outstanding or a backoff delay is being waited out.
	StateRunning
	// StateSucceeded means the operation returned a value.
	StateSucceeded
	// StateExhausted means the final permitted attempt failed.
	StateExhausted
	// StateCancelled means the owner cancelled the session before it reached another terminal state.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateExhausted || s == StateCancelled
}

// Outcome is the single terminal report of a session.
type Outcome[T any] struct {
	SessionID string
	State     State
	// Value is set only when State is StateSucceeded.
	Value T
	// Err is an *ExhaustedError for StateExhausted and ErrCancelled for StateCancelled.
	Err error
	// Attempts is the number of times the operation was invoked.
	Attempts int
}

// Attempt describes a failed attempt that is about to be retried.
// It is reported before the backoff wait begins.
type Attempt struct {
	SessionID   string
	Policy      string
	Number      int
	MaxAttempts int
	Delay       time.Duration
	At          time.Time
	Err         error
}

// Transition describes a state change of a session.
type Transition struct {
	SessionID string
	Policy    string
	From      State
	To        State
	At        time.Time
}
