package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aravindh-murugesan/retrysentry-go/internal/workflow"
)

var allCommand = &cobra.Command{
	Use:     "all",
	GroupID: "retrysentry",
	Short:   "Run the four policy demos side by side",
	Long:    `Starts one session per backoff policy with the default settings and runs them concurrently. Every session is independent; cancelling one never affects the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("RetrySentry - All Policies"))
		return runSessions(cmd, workflow.DefaultSessions())
	},
}

var runCommand = &cobra.Command{
	Use:     "run",
	GroupID: "retrysentry",
	Short:   "Run the sessions listed in the config file",
	Long:    `Reads the 'sessions' list from --config (or RETRYSENTRY_CONFIG) and runs every session concurrently. Without a config file the built-in demos are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("RetrySentry - Configured Sessions"))

		sessions, err := workflow.LoadSessions(viper.GetViper())
		if err != nil {
			return err
		}
		return runSessions(cmd, sessions)
	},
}

func runSessions(cmd *cobra.Command, sessions []workflow.SessionConfig) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	reports, err := workflow.RunSessions(ctx, sessions, workflowOptions(cmd.Name()))
	if err != nil {
		return err
	}
	renderReports(os.Stdout, reports)
	return nil
}

func init() {
	rootCommand.AddCommand(allCommand, runCommand)
}
