package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aravindh-murugesan/retrysentry-go/internal/policy"
	"github.com/aravindh-murugesan/retrysentry-go/internal/retry"
)

func TestMetrics_ObserveTransition(t *testing.T) {
	m := New(nil, "", "")

	m.ObserveTransition(retry.Transition{Policy: "constant", From: retry.StateIdle, To: retry.StateRunning})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("constant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsInFlight))

	m.ObserveTransition(retry.Transition{Policy: "constant", From: retry.StateRunning, To: retry.StateExhausted})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsFinished.WithLabelValues("constant", "exhausted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsInFlight))

	// Cancelling an idle session doesn't touch the in-flight gauge.
	m.ObserveTransition(retry.Transition{Policy: "constant", From: retry.StateIdle, To: retry.StateCancelled})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsFinished.WithLabelValues("constant", "cancelled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsInFlight))
}

func TestMetrics_ObserveAttempt(t *testing.T) {
	m := New(nil, "", "")

	m.ObserveAttempt(retry.Attempt{Policy: "exponential", Number: 1, Delay: 2 * time.Second})
	m.ObserveAttempt(retry.Attempt{Policy: "exponential", Number: 2, Delay: 4 * time.Second})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.retries.WithLabelValues("exponential")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.backoffDelay))
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "demo", "worker")
	m.ObserveTransition(retry.Transition{Policy: "immediate", From: retry.StateIdle, To: retry.StateRunning})

	n, err := testutil.GatherAndCount(reg, "demo_worker_sessions_started_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Panics(t, func() { New(reg, "demo", "worker") }, "duplicate registration")
}

func TestMetrics_FedBySession(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "", "")

	var calls atomic.Int32
	op := func(ctx context.Context) (string, error) {
		if calls.Add(1) <= 2 {
			return "", errors.New("unexpected error in service")
		}
		return "ok", nil
	}

	_, err := retry.Do(context.Background(), op, &policy.PolicyImmediate{}, 3, m.Options()...)
	require.NoError(t, err)

	// Hooks are delivered asynchronously.
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.sessionsFinished.WithLabelValues(policy.TypeImmediate, "succeeded")) == 1
	}, 5*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.retries.WithLabelValues(policy.TypeImmediate)) == 2
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues(policy.TypeImmediate)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsInFlight))
}

func TestMetrics_SessionAccountedWhenAttemptsOverflow(t *testing.T) {
	m := New(nil, "", "")

	op := func(ctx context.Context) (string, error) {
		return "", errors.New("unexpected error in service")
	}
	slowHook := retry.WithAttemptHook(func(retry.Attempt) { time.Sleep(time.Millisecond) })

	_, err := retry.Do(context.Background(), op, &policy.PolicyImmediate{}, 300, append(m.Options(), slowHook)...)
	require.Error(t, err)

	// Retry events beyond the hook backlog are dropped, the session totals are not.
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.sessionsFinished.WithLabelValues(policy.TypeImmediate, "exhausted")) == 1
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues(policy.TypeImmediate)))
}
