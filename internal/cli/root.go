package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/towline/pkg/pipeline"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package with values injected via
// ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// exitError carries a pipeline outcome up through cobra so Execute can turn
// it into the process exit code.
type exitError struct {
	outcome pipeline.Outcome
}

func (e exitError) Error() string { return e.outcome.String() }

// Execute runs the towline CLI and returns the process exit code. Pipeline
// outcomes map directly to exit codes so scripts can branch on which phase
// failed; any other error exits with the fatal code.
func Execute(ctx context.Context) int {
	var verbose bool

	root := &cobra.Command{
		Use:           "towline",
		Short:         "Towline releases multi-package Cargo workspaces",
		Long:          `Towline plans and runs releases of Cargo workspaces: version bumps, dependent requirement updates, publishing, tagging, and pushing, in dependency order.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("towline %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newReleaseCmd())
	root.AddCommand(newChangesCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return int(exit.outcome)
		}
		if errors.Is(err, context.Canceled) {
			return 130 // standard shell convention for SIGINT
		}
		printError("%v", err)
		return int(pipeline.OutcomeFatal)
	}
	return 0
}
