package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/aravindh-murugesan/retrysentry-go/internal/metrics"
	"github.com/aravindh-murugesan/retrysentry-go/internal/notifications"
	"github.com/aravindh-murugesan/retrysentry-go/internal/retry"
)

// ServiceName identifies this tool in webhook payloads.
const ServiceName = "retrysentry"

// WorkflowOptions carries everything a retry workflow needs besides the session itself.
type WorkflowOptions struct {
	Session SessionConfig

	// LogLevel is used to build a logger when Logger is nil.
	LogLevel string
	Logger   *slog.Logger
	// Timeout bounds the whole session. Zero means no limit.
	Timeout time.Duration
	// Metrics and Webhook are optional.
	Metrics *metrics.Metrics
	Webhook *notifications.Webhook
	// Clock defaults to the real clock.
	Clock clock.Clock
}

// Report summarises a finished session.
type Report struct {
	SessionID string
	Name      string
	Policy    string
	State     retry.State
	Attempts  int
	Value     string
	Err       error
	Elapsed   time.Duration
}

// Succeeded reports whether the operation eventually returned a value.
func (r Report) Succeeded() bool {
	return r.State == retry.StateSucceeded
}

// RunRetryWorkflow runs one demo session end to end.
//
// Responsibilities:
//  1. Setup: Builds the logger, policy and session options.
//  2. Execution: Runs the demo operation under the policy, logging every scheduled retry.
//  3. Reporting: Records metrics, alerts the webhook on failure and returns the outcome.
//
// The returned error is non-nil only when the session could not be started. A session that runs
// out of retries or is cancelled is a normal outcome described by the Report.
func RunRetryWorkflow(ctx context.Context, opts WorkflowOptions) (Report, error) {
	cfg := opts.Session
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	// 1. Setup Logger & Context
	logger := opts.Logger
	if logger == nil {
		logger = SetupLogger(opts.LogLevel, "workflow")
	}
	logger = logger.With("workflow", "retry", "session", cfg.Name)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		logger.Debug("Session timeout configured", "timeout", opts.Timeout)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	p, err := cfg.BuildPolicy()
	if err != nil {
		return Report{}, err
	}

	// 2. Assemble the session
	options := []retry.Option{
		retry.WithClock(clk),
		retry.WithLogger(logger),
		retry.WithAttemptHook(func(a retry.Attempt) {
			logger.Info(fmt.Sprintf("Retrying %d occurs at %s, after %s", a.Number, FormatClock(a.At), a.Delay),
				"session_id", a.SessionID)
		}),
		retry.WithStateHook(func(t retry.Transition) {
			logger.Debug("Session state changed", "session_id", t.SessionID, "from", t.From, "to", t.To)
		}),
	}
	if opts.Metrics != nil {
		options = append(options, opts.Metrics.Options()...)
	}

	session, err := retry.NewSession(cfg.Operation(), p, cfg.MaxAttempts, options...)
	if err != nil {
		logger.Error("Invalid session configuration", "error", err)
		return Report{}, err
	}
	logger = logger.With("session_id", session.ID())

	// 3. Run and wait
	logger.Info("Session busy",
		"policy", p.GetPolicyType(),
		"max_attempts", cfg.MaxAttempts,
		"policy_config", p.ToMetadata())

	started := clk.Now()
	if err := session.Start(ctx); err != nil {
		return Report{}, err
	}
	defer session.Cancel()

	outcome := <-session.Outcome()

	report := Report{
		SessionID: outcome.SessionID,
		Name:      cfg.Name,
		Policy:    p.GetPolicyType(),
		State:     outcome.State,
		Attempts:  outcome.Attempts,
		Value:     outcome.Value,
		Err:       outcome.Err,
		Elapsed:   clk.Since(started),
	}

	// 4. Report
	switch report.State {
	case retry.StateSucceeded:
		logger.Info("Session idle", "state", report.State, "attempts", report.Attempts, "value", report.Value)
	case retry.StateCancelled:
		logger.Warn("Session idle", "state", report.State, "attempts", report.Attempts, "cause", context.Cause(ctx))
	default:
		logger.Error("Session idle", "state", report.State, "attempts", report.Attempts, "error", report.Err)
	}

	if !report.Succeeded() && opts.Webhook.Enabled() {
		notifyFailure(opts.Webhook, report, clk.Now(), logger)
	}

	return report, nil
}

// RunSessions runs the sessions concurrently, each with its own copy of opts.
// Reports are returned in the order of sessions. The first session that cannot be started
// cancels the others.
func RunSessions(ctx context.Context, sessions []SessionConfig, opts WorkflowOptions) ([]Report, error) {
	reports := make([]Report, len(sessions))

	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range sessions {
		g.Go(func() error {
			sessionOpts := opts
			sessionOpts.Session = cfg

			report, err := RunRetryWorkflow(ctx, sessionOpts)
			if err != nil {
				return fmt.Errorf("session %q: %w", cfg.Name, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// notifyFailure posts the outcome to the webhook. Delivery errors are logged, never returned.
func notifyFailure(hook *notifications.Webhook, report Report, finishedAt time.Time, logger *slog.Logger) {
	message := "session cancelled"
	if report.Err != nil && !errors.Is(report.Err, retry.ErrCancelled) {
		message = report.Err.Error()
	}

	// The session context may already be done, the alert still has to go out.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := hook.Notify(ctx, notifications.OutcomeNotification{
		Service:    ServiceName,
		SessionID:  report.SessionID,
		Name:       report.Name,
		Policy:     report.Policy,
		State:      report.State.String(),
		Attempts:   report.Attempts,
		Message:    message,
		FinishedAt: finishedAt.UTC(),
	})
	if err != nil {
		logger.Error("Failed to send webhook notification", "error", err)
		return
	}
	logger.Debug("Webhook notification sent")
}
