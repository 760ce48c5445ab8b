package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aravindh-murugesan/retrysentry-go/internal/policy"
	"github.com/aravindh-murugesan/retrysentry-go/internal/workflow"
)

// policyFlags holds the flags of one policy command.
type policyFlags struct {
	maxRetries   int
	succeedAfter int
	maxDelay     time.Duration
	delay        time.Duration // Constant only
	base         float64       // Exponential variants
	unit         time.Duration // Exponential variants
	jitter       time.Duration // Jitter only
	jitterSet    bool
}

// params renders the flags as policy metadata for policy.New.
func (f *policyFlags) params(policyType string) map[string]string {
	params := map[string]string{}
	switch policyType {
	case policy.TypeConstant:
		params["delay"] = f.delay.String()
	case policy.TypeExponentialJitter:
		// Left out unless given, so the policy falls back to one unit.
		if f.jitterSet {
			params["jitter"] = f.jitter.String()
		}
		fallthrough
	case policy.TypeExponential:
		params["base"] = fmt.Sprint(f.base)
		params["unit"] = f.unit.String()
	}
	if f.maxDelay > 0 {
		params["max"] = f.maxDelay.String()
	}
	return params
}

func (f *policyFlags) session(name, policyType string) workflow.SessionConfig {
	return workflow.SessionConfig{
		Name:         name,
		Policy:       policyType,
		MaxAttempts:  f.maxRetries,
		Params:       f.params(policyType),
		SucceedAfter: f.succeedAfter,
	}
}

// newPolicyCommand builds the demo command for one backoff policy.
func newPolicyCommand(name, policyType string, defaultRetries int, short, long string) *cobra.Command {
	flags := &policyFlags{}

	cmd := &cobra.Command{
		Use:     name,
		GroupID: "policies",
		Short:   short,
		Long:    long,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(headerStyle.Render(fmt.Sprintf("RetrySentry - %s Retry", cmd.Name())))

			flags.jitterSet = cmd.Flags().Changed("jitter")

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			opts := workflowOptions(name)
			opts.Session = flags.session(name, policyType)

			report, err := workflow.RunRetryWorkflow(ctx, opts)
			if err != nil {
				return err
			}
			renderReports(os.Stdout, []workflow.Report{report})
			return nil
		},
	}

	cmd.Flags().IntVar(&flags.maxRetries, "max-retries", defaultRetries, "Retries allowed after the first failure (0 = run once)")
	cmd.Flags().IntVar(&flags.succeedAfter, "succeed-after", 0, "Attempt on which the demo operation starts succeeding (0 = never)")
	cmd.Flags().DurationVar(&flags.maxDelay, "max-delay", 0, "Upper bound for any single delay (0 = no cap)")

	switch policyType {
	case policy.TypeConstant:
		cmd.Flags().DurationVar(&flags.delay, "delay", 2*time.Second, "Fixed delay between attempts")
	case policy.TypeExponentialJitter:
		cmd.Flags().DurationVar(&flags.jitter, "jitter", 0, "Jitter bound applied around each delay (default one unit, 0 disables jitter)")
		fallthrough
	case policy.TypeExponential:
		cmd.Flags().Float64Var(&flags.base, "base", policy.DefaultBase, "Growth factor of the delay")
		cmd.Flags().DurationVar(&flags.unit, "unit", policy.DefaultUnit, "Time unit the exponential delay is expressed in")
	}

	return cmd
}

func init() {
	rootCommand.AddCommand(
		newPolicyCommand("immediate", policy.TypeImmediate, 2,
			"Retry immediately after every failure",
			`Runs the demo operation and retries it right away after each failure, without any delay.`),
		newPolicyCommand("constant", policy.TypeConstant, 3,
			"Retry after a fixed delay",
			`Runs the demo operation and waits the same delay (2s by default) before every retry.`),
		newPolicyCommand("exponential", policy.TypeExponential, 3,
			"Retry with exponentially growing delays",
			`Runs the demo operation and waits unit * base^n before retry n, i.e. 2s, 4s, 8s with the defaults.`),
		newPolicyCommand("jitter", policy.TypeExponentialJitter, 3,
			"Retry with exponential delays plus random jitter",
			`Runs the demo operation and waits unit * base^n shifted by a random offset within +/- jitter
before retry n. The delay never drops below zero.`),
	)
}
