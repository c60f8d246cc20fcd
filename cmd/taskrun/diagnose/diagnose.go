package diagnose

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flarebyte/taskrun/cmd/taskrun/run"
	"github.com/flarebyte/taskrun/internal/builtin"
)

var (
	flagPlugin    string
	flagOptions   string
	flagTask      string
	flagUntilStep int
	flagDumpDir   string
	flagFormat    string
	flagOut       string
)

// Cmd implements `taskrun diagnose`.
var Cmd = &cobra.Command{
	Use:           "diagnose [files...]",
	Short:         "Run one plugin or the steps of a task and print the resulting props",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagFormat != "json" && flagFormat != "yaml" {
			return fmt.Errorf("invalid value for --format: %s (expected json|yaml)", flagFormat)
		}
		dir, err := cmd.Flags().GetString("dir")
		if err != nil {
			return err
		}
		deps := builtin.Deps{Root: dir, Stdin: cmd.InOrStdin(), Stdout: cmd.ErrOrStderr()}

		var steps []run.Step
		switch {
		case flagPlugin != "" && flagTask != "":
			return errors.New("--plugin and --task are exclusive")
		case flagPlugin != "":
			opts, err := parseOptions(flagOptions)
			if err != nil {
				return err
			}
			r, err := builtin.Build(flagPlugin, "", opts, deps)
			if err != nil {
				return err
			}
			steps = []run.Step{{Label: flagPlugin, Runner: r}}
		case flagTask != "":
			s, err := run.ResolveSettings(cmd)
			if err != nil {
				return err
			}
			f, err := run.LoadTaskFile(s, dir)
			if err != nil {
				return err
			}
			if steps, err = run.CompileSteps(f, flagTask, deps); err != nil {
				return err
			}
			if flagUntilStep >= 0 {
				if flagUntilStep >= len(steps) {
					return fmt.Errorf("--until-step out of range: %d", flagUntilStep)
				}
				steps = steps[:flagUntilStep+1]
			}
		default:
			return errors.New("missing required flag: --plugin or --task")
		}
		return runSteps(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), steps, args)
	},
}

func init() {
	run.BindProjectFlags(Cmd)
	Cmd.Flags().StringVar(&flagPlugin, "plugin", "", "Built-in plugin to run")
	Cmd.Flags().StringVar(&flagOptions, "options", "", "Plugin options as a JSON object (with --plugin)")
	Cmd.Flags().StringVar(&flagTask, "task", "", "Task whose steps to run")
	Cmd.Flags().IntVar(&flagUntilStep, "until-step", -1, "Run task steps through this index (inclusive, 0-based)")
	Cmd.Flags().StringVar(&flagDumpDir, "dump-dir", "", "Directory to write per-step dumps (<seq>_<step>_{in,out}.json)")
	Cmd.Flags().StringVar(&flagFormat, "format", "json", "Output format: json|yaml")
	Cmd.Flags().StringVar(&flagOut, "out", "-", "Output path, - for stdout")
}

func parseOptions(s string) (builtin.Options, error) {
	if s == "" {
		return builtin.Options{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("invalid --options JSON: %v", err)
	}
	return builtin.Options(m), nil
}
