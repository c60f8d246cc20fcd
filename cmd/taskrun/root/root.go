package root

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/taskrun/cmd/taskrun/diagnose"
	"github.com/flarebyte/taskrun/cmd/taskrun/list"
	"github.com/flarebyte/taskrun/cmd/taskrun/run"
	"github.com/flarebyte/taskrun/cmd/taskrun/version"
)

// NewRootCmd creates the root command for taskrun.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskrun",
		Short: "CLI: Run file-processing tasks built from chained plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.Cmd)
	cmd.AddCommand(list.Cmd)
	cmd.AddCommand(diagnose.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
