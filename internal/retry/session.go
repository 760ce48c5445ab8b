package retry

import (
	"context"
	"sync"

	"github.com/aravindh-murugesan/retrysentry-go/internal/policy"
)

// Session is one retry sequence of a single operation. It is created idle, runs once and ends
// in exactly one terminal state. All methods are safe for concurrent use.
type Session[T any] struct {
	cfg         *config
	op          Operation[T]
	policy      policy.BackoffPolicy
	maxAttempts int

	mu       sync.Mutex
	state    State
	attempts int
	result   Outcome[T]
	cancel   context.CancelFunc
	hooks    *dispatcher

	outcome chan Outcome[T]
	done    chan struct{}
}

// NewSession validates the parameters and returns an idle session.
//
// maxAttempts is the number of retries permitted after the first failure; zero means the
// operation runs exactly once. A negative value, a nil operation or a nil policy is reported
// as a *ConfigError.
func NewSession[T any](
	op Operation[T],
	p policy.BackoffPolicy,
	maxAttempts int,
	options ...Option,
) (*Session[T], error) {
	if op == nil {
		return nil, &ConfigError{Field: "operation", Value: nil, Reason: "can't be nil"}
	}
	if p == nil {
		return nil, &ConfigError{Field: "policy", Value: nil, Reason: "can't be nil"}
	}
	if maxAttempts < 0 {
		return nil, &ConfigError{Field: "max attempts", Value: maxAttempts, Reason: "can't be < 0"}
	}

	return &Session[T]{
		cfg:         newConfig(options...),
		op:          op,
		policy:      p,
		maxAttempts: maxAttempts,
		state:       StateIdle,
		outcome:     make(chan Outcome[T], 1),
		done:        make(chan struct{}),
	}, nil
}

// Start creates a session and starts it. Configuration errors are returned synchronously,
// before the operation is ever invoked.
func Start[T any](
	ctx context.Context,
	op Operation[T],
	p policy.BackoffPolicy,
	maxAttempts int,
	options ...Option,
) (*Session[T], error) {
	s, err := NewSession(op, p, maxAttempts, options...)
	if err != nil {
		return nil, err
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Start moves an idle session to running and begins the first attempt in the background.
// Cancelling ctx cancels the session.
func (s *Session[T]) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.transitionLocked(StateRunning)

	// Preempts an outstanding attempt or wait as soon as the owner's context ends.
	context.AfterFunc(ctx, s.Cancel)

	go s.run(ctx)

	return nil
}

// Cancel ends the session in the cancelled state unless it already finished.
// Any outcome the operation produces afterwards is discarded. Calling Cancel more than once,
// or on a finished session, has no effect.
func (s *Session[T]) Cancel() {
	s.finish(Outcome[T]{State: StateCancelled, Err: ErrCancelled})
}

// Outcome returns a channel that delivers the terminal outcome once and is then closed.
func (s *Session[T]) Outcome() <-chan Outcome[T] {
	return s.outcome
}

// Done is closed when the session reaches a terminal state.
func (s *Session[T]) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session finishes or ctx is done.
// Unlike Outcome, it can be called any number of times from any goroutine.
func (s *Session[T]) Wait(ctx context.Context) (Outcome[T], error) {
	select {
	case <-s.done:
		return s.Result()
	case <-ctx.Done():
		return Outcome[T]{}, ctx.Err()
	}
}

// Result returns the terminal outcome. The error is non-nil while the session is still running.
func (s *Session[T]) Result() (Outcome[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		return Outcome[T]{}, ErrNotFinished
	}
	return s.result, nil
}

// State returns the current lifecycle state.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts returns the number of invocations made so far.
func (s *Session[T]) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// ID returns the session identifier used in logs, hooks and outcomes.
func (s *Session[T]) ID() string {
	return s.cfg.id
}

func (s *Session[T]) run(ctx context.Context) {
	logger := s.cfg.logger.With(
		"session_id", s.cfg.id,
		"policy", s.policy.GetPolicyType(),
	)

	for attemptNumber := 0; ; {
		if !s.beginAttempt(ctx) {
			s.Cancel()
			return
		}

		value, err := s.op(ctx)

		// A result that arrives after cancellation is dropped.
		if ctx.Err() != nil {
			s.Cancel()
			return
		}

		if err == nil {
			s.finish(Outcome[T]{State: StateSucceeded, Value: value})
			return
		}

		if attemptNumber >= s.maxAttempts || !s.cfg.retryable(err) {
			made := s.Attempts()
			logger.Debug("Retry limit reached, giving up",
				"attempts", made,
				"max_attempts", s.maxAttempts,
				"error", err)
			s.finish(Outcome[T]{
				State: StateExhausted,
				Err:   &ExhaustedError{Attempts: made, Err: err},
			})
			return
		}

		attemptNumber++
		delay := s.policy.DelayFor(attemptNumber)

		logger.Warn("Transient error detected, scheduling retry",
			"attempt", attemptNumber,
			"max_attempts", s.maxAttempts,
			"delay", delay,
			"error", err)

		s.reportAttempt(Attempt{
			SessionID:   s.cfg.id,
			Policy:      s.policy.GetPolicyType(),
			Number:      attemptNumber,
			MaxAttempts: s.maxAttempts,
			Delay:       delay,
			At:          s.cfg.clock.Now(),
			Err:         err,
		})

		if !wait(ctx, s.cfg.clock, delay) {
			s.Cancel()
			return
		}
	}
}

// beginAttempt records an invocation if the session is still running and not cancelled.
func (s *Session[T]) beginAttempt(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning || ctx.Err() != nil {
		return false
	}
	s.attempts++
	return true
}

// finish performs the single terminal transition. It reports false if the session already finished.
func (s *Session[T]) finish(o Outcome[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return false
	}

	o.SessionID = s.cfg.id
	o.Attempts = s.attempts
	s.result = o
	s.transitionLocked(o.State)

	s.outcome <- o
	close(s.outcome)
	close(s.done)

	if s.cancel != nil {
		s.cancel()
	}
	s.hooks.close()

	return true
}

// transitionLocked changes the state and reports it to the state hooks.
// Intermediate transitions share the droppable hook buffer; the terminal one always reaches the hooks.
func (s *Session[T]) transitionLocked(to State) {
	from := s.state
	s.state = to

	if len(s.cfg.stateHooks) == 0 {
		return
	}

	t := Transition{
		SessionID: s.cfg.id,
		Policy:    s.policy.GetPolicyType(),
		From:      from,
		To:        to,
		At:        s.cfg.clock.Now(),
	}
	hooks := s.cfg.stateHooks
	event := func() {
		for _, hook := range hooks {
			hook(t)
		}
	}

	if to.Terminal() {
		s.dispatcherLocked().closeWith(event)
		return
	}
	s.dispatcherLocked().post(event)
}

func (s *Session[T]) reportAttempt(a Attempt) {
	if len(s.cfg.attemptHooks) == 0 {
		return
	}

	s.mu.Lock()
	d := s.dispatcherLocked()
	s.mu.Unlock()

	hooks := s.cfg.attemptHooks
	d.post(func() {
		for _, hook := range hooks {
			hook(a)
		}
	})
}

// dispatcherLocked lazily starts the hook goroutine so idle sessions hold no resources.
func (s *Session[T]) dispatcherLocked() *dispatcher {
	if s.hooks == nil && s.cfg.hasHooks() {
		s.hooks = newDispatcher(hookBuffer)
	}
	return s.hooks
}
