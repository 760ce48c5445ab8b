package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-co-op/gocron-ui/server"
	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aravindh-murugesan/retrysentry-go/internal/metrics"
	"github.com/aravindh-murugesan/retrysentry-go/internal/workflow"
)

var (
	sessionSchedule string
	bindAddress     string
)

var daemonCommand = &cobra.Command{
	Use:     "daemon",
	Short:   "Run RetrySentry in daemon mode",
	GroupID: "retrysentry",
	Long:    `Starts RetrySentry as a background service that runs the configured sessions on a cron schedule, serves the scheduler dashboard and exposes Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		banner := fmt.Sprintf("RetrySentry - Daemon Mode \n\nVersion: %s\nBuild Date: %s", RetrysentryVersion, RetrysentryDate)
		fmt.Println(headerStyle.Render(banner))

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		opts := workflowOptions("daemon")
		dlog := opts.Logger

		sessions, err := workflow.LoadSessions(viper.GetViper())
		if err != nil {
			return err
		}

		// 1. Metrics
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = metrics.New(registry, metrics.DefaultNamespace, "")

		// 2. Scheduler
		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		for _, session := range sessions {
			if _, err := scheduleSession(ctx, s, session, opts); err != nil {
				_ = s.Shutdown()
				return fmt.Errorf("failed to schedule session %q: %w", session.Name, err)
			}
		}

		s.Start()
		dlog.Info("Scheduler started", "sessions", len(sessions), "schedule", sessionSchedule)

		// 3. Dashboard and metrics endpoint
		port, err := listenPort(bindAddress)
		if err != nil {
			_ = s.Shutdown()
			return err
		}
		ui := server.NewServer(s, port, server.WithTitle("RetrySentry Go - Dashboard"))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		mux.Handle("/", ui.Router)

		httpServer := &http.Server{
			Addr:              bindAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			dlog.Info("RetrySentry Scheduler UI started", "address", bindAddress)
			serveErr <- httpServer.ListenAndServe()
		}()

		// 4. Block until signal or server failure
		select {
		case <-ctx.Done():
			dlog.Warn("Shutting down scheduler due to system signal...")
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				dlog.Error("Failed to start UI server", "error", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			dlog.Error("UI server shutdown failed", "error", err)
		}
		return s.Shutdown()
	},
}

// scheduleSession registers a cron job that runs one configured session.
func scheduleSession(ctx context.Context, s gocron.Scheduler, session workflow.SessionConfig, opts workflow.WorkflowOptions) (gocron.Job, error) {
	opts.Session = session
	dlog := opts.Logger.With("job_name", session.Name)

	// Declared first so it can be used inside the task closure
	var job gocron.Job

	job, err := s.NewJob(
		gocron.CronJob(sessionSchedule, false),
		gocron.NewTask(func() {
			// A. Run the Workflow
			report, err := workflow.RunRetryWorkflow(ctx, opts)
			if err != nil {
				dlog.Error("Session could not be started", "error", err)
				return
			}

			// B. Calculate and Log the Next Run (Post-Execution)
			if job != nil {
				if nextRun, err := job.NextRun(); err == nil {
					dlog.Info("Retry workflow completed",
						"state", report.State,
						"attempts", report.Attempts,
						"next_run", nextRun.Format(time.RFC3339),
						"job_id", job.ID())
				}
			}
		}),
		gocron.WithName(fmt.Sprintf("Retry Session - %s", session.Name)),
		gocron.WithTags(session.Policy),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	// Log the Initial Next Run (Pre-Execution)
	if nextRun, err := job.NextRun(); err == nil {
		dlog.Info("Job Scheduled",
			"job_id", job.ID(),
			"schedule", sessionSchedule,
			"next_run", nextRun.Format(time.RFC3339))
	}
	return job, nil
}

// listenPort extracts the numeric port of a host:port bind address.
func listenPort(address string) (int, error) {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return 0, fmt.Errorf("invalid bind address %q: %w", address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid bind address %q: %w", address, err)
	}
	return port, nil
}

func init() {
	rootCommand.AddCommand(daemonCommand)
	daemonCommand.Flags().StringVar(&sessionSchedule, "schedule", "*/5 * * * *", "Cron schedule for the configured sessions")
	daemonCommand.Flags().StringVar(&bindAddress, "bind-address", "0.0.0.0:8080", "Address to bind the UI and metrics server")
}
