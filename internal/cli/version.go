package cli

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aravindh-murugesan/retrysentry-go/internal/policy"
)

var (
	RetrysentryVersion, RetrysentryCommit, RetrysentryDate string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, commit hash, build date, Go runtime and the supported backoff policies",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

// printVersion falls back to the module build info when no version was stamped via -ldflags,
// which is the case for `go install`.
func printVersion(w io.Writer) {
	version := RetrysentryVersion
	if version == "" {
		version = "devel"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			version = info.Main.Version
		}
	}

	fmt.Fprintf(w, "RetrySentry version: %s\n", version)
	fmt.Fprintf(w, "Commit: %s\n", valueOr(RetrysentryCommit, "unknown"))
	fmt.Fprintf(w, "Built: %s\n", valueOr(RetrysentryDate, "unknown"))
	fmt.Fprintf(w, "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Policies: %s\n", strings.Join(policy.Types(), ", "))
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	rootCommand.AddCommand(versionCommand)
}
