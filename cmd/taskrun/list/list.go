package list

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flarebyte/taskrun/cmd/taskrun/run"
	"github.com/flarebyte/taskrun/internal/builtin"
	"github.com/flarebyte/taskrun/internal/config"
)

var flagPlugins bool

// Cmd implements `taskrun list`.
var Cmd = &cobra.Command{
	Use:           "list",
	Short:         "List tasks from the task file, or the built-in plugins",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPlugins {
			return printPlugins(cmd.OutOrStdout())
		}
		s, err := run.ResolveSettings(cmd)
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		f, err := run.LoadTaskFile(s, dir)
		if err != nil {
			return err
		}
		return printTasks(cmd.OutOrStdout(), f)
	},
}

func init() {
	run.BindProjectFlags(Cmd)
	Cmd.Flags().BoolVar(&flagPlugins, "plugins", false, "List built-in plugins instead of tasks")
}

func printTasks(w io.Writer, f config.TaskFile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range f.Names() {
		t := f.Tasks[name]
		if _, err := fmt.Fprintf(tw, "%s\t%d step(s)\t%s\n", name, len(t.Steps), t.Description); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printPlugins(w io.Writer) error {
	for _, n := range builtin.Names() {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}
