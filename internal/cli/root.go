package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aravindh-murugesan/retrysentry-go/internal/notifications"
	"github.com/aravindh-murugesan/retrysentry-go/internal/workflow"
)

var (
	configFile, logLevel string
	timeout              int
	webhookURL           string
	webhookUsername      string
	webhookPassword      string
	webhookVerify        bool
)

var rootCommand = &cobra.Command{
	Use:     "retrysentry-go",
	Aliases: []string{"retrysentry"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 'version' and 'help' never need a config file
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		configFile = viper.GetString("config")
		if configFile == "" {
			return nil
		}

		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %q: %w", configFile, err)
		}
		return nil
	},
	SilenceUsage: true,
	Short:        "RetrySentry: retry coordinator with pluggable backoff policies",
	Long: `RetrySentry re-invokes failing operations under a backoff policy (immediate, constant,
exponential or exponential with jitter) until they succeed, run out of retries or are cancelled.

Each policy command runs a demo session against an operation that fails on purpose, logging
every scheduled retry with its delay. The daemon mode runs configured sessions on a cron
schedule and exposes Prometheus metrics.`,
}

func Execute() error {
	return rootCommand.Execute()
}

func init() {
	rootCommand.AddGroup(&cobra.Group{ID: "policies", Title: "Backoff Policies"})
	rootCommand.AddGroup(&cobra.Group{ID: "retrysentry", Title: "RetrySentry"})

	// Global Persistent Flags with env vars support
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML file with a 'sessions' list")
	rootCommand.PersistentFlags().IntVar(&timeout, "timeout", 0, "Per-session timeout in seconds (0 = run indefinitely)")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCommand.PersistentFlags().StringVar(&webhookURL, "webhook-url", "", "Webhook URL for alerting on failed sessions")
	rootCommand.PersistentFlags().StringVar(&webhookUsername, "webhook-username", "", "Webhook username for alerting")
	rootCommand.PersistentFlags().StringVar(&webhookPassword, "webhook-password", "", "Webhook password for alerting")
	rootCommand.PersistentFlags().BoolVar(&webhookVerify, "webhook-verify", true, "Verify the webhook TLS certificate")

	// Bind to env vars
	for _, name := range []string{
		"config", "timeout", "log-level",
		"webhook-url", "webhook-username", "webhook-password", "webhook-verify",
	} {
		_ = viper.BindPFlag(name, rootCommand.PersistentFlags().Lookup(name))
	}

	viper.SetEnvPrefix("RETRYSENTRY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// workflowOptions collects the global settings shared by every command.
func workflowOptions(component string) workflow.WorkflowOptions {
	level := viper.GetString("log-level")
	return workflow.WorkflowOptions{
		LogLevel: level,
		Logger:   workflow.SetupLogger(level, component),
		Timeout:  time.Duration(viper.GetInt("timeout")) * time.Second,
		Webhook: &notifications.Webhook{
			URL:      viper.GetString("webhook-url"),
			Username: viper.GetString("webhook-username"),
			Password: viper.GetString("webhook-password"),
			Verify:   viper.GetBool("webhook-verify"),
		},
	}
}

// signalContext is cancelled on Ctrl-C or SIGTERM, which cancels every running session.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
