package retry

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

// hookBuffer is the number of pending hook events a session keeps before dropping new ones.
const hookBuffer = 64

// Option configures a Session.
type Option func(*config)

// WithClock sets the time source used for backoff waits and timestamps.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithSessionID overrides the generated "req-<uuid>" session identifier.
func WithSessionID(id string) Option {
	return func(cfg *config) {
		if id != "" {
			cfg.id = id
		}
	}
}

// WithLogger sets the logger for transient failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithAttemptHook registers a diagnostic callback invoked before every backoff wait.
//
// Hooks run on a separate goroutine per session. They never delay the session; when a hook
// falls behind, new events are dropped.
func WithAttemptHook(hook func(Attempt)) Option {
	return func(cfg *config) {
		if hook != nil {
			cfg.attemptHooks = append(cfg.attemptHooks, hook)
		}
	}
}

// WithStateHook registers a callback invoked on every state transition, with the same
// delivery rules as WithAttemptHook except that the terminal transition is never dropped:
// it is delivered last, after the hooks have caught up with earlier events.
func WithStateHook(hook func(Transition)) Option {
	return func(cfg *config) {
		if hook != nil {
			cfg.stateHooks = append(cfg.stateHooks, hook)
		}
	}
}

// WithRetryIf sets the classifier deciding whether a failure may be retried.
// A failure it rejects ends the session as exhausted right away. By default every failure is retried.
func WithRetryIf(retryable func(error) bool) Option {
	return func(cfg *config) {
		if retryable != nil {
			cfg.retryable = retryable
		}
	}
}

type config struct {
	clock        clock.Clock
	id           string
	logger       *slog.Logger
	attemptHooks []func(Attempt)
	stateHooks   []func(Transition)
	retryable    func(error) bool
}

func newConfig(options ...Option) *config {
	cfg := config{
		clock:     clock.RealClock{},
		id:        fmt.Sprintf("req-%s", uuid.New().String()),
		logger:    slog.Default(),
		retryable: func(error) bool { return true },
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &cfg
}

func (c *config) hasHooks() bool {
	return len(c.attemptHooks) != 0 || len(c.stateHooks) != 0
}
