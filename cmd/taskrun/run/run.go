package run

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/taskrun/internal/builtin"
	"github.com/flarebyte/taskrun/internal/config"
	"github.com/flarebyte/taskrun/internal/console"
	"github.com/flarebyte/taskrun/internal/logging"
	"github.com/flarebyte/taskrun/internal/plugin"
	"github.com/flarebyte/taskrun/internal/telemetry"
)

var (
	cfgPath      string
	settingsPath string
	dir          string
	progress     bool
	metricsFile  string
	logLevel     string
	logJSON      bool
)

// Cmd represents the `taskrun run` command.
var Cmd = &cobra.Command{
	Use:           "run <task> [files...]",
	Short:         "Run a task defined in the task file",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ResolveSettings(cmd)
		if err != nil {
			return err
		}
		logging.Configure(logging.Options{Level: s.Log.Level, JSON: s.Log.JSON, Writer: cmd.ErrOrStderr()})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Execute(ctx, Options{
			Settings: s,
			Dir:      dir,
			Stdin:    cmd.InOrStdin(),
			Stdout:   cmd.OutOrStdout(),
		}, args[0], args[1:])
	},
}

func init() {
	BindProjectFlags(Cmd)
	Cmd.Flags().BoolVar(&progress, "progress", false, "Print start, done and file lines for every step")
	Cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus text metrics to this path after the run")
	Cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	Cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log as JSON")
}

// BindProjectFlags registers the flags that locate the project files.
func BindProjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to task file (.cue)")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Path to settings file (default <dir>/"+config.DefaultSettingsFile+")")
	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "Project root; relative paths resolve against it")
}

// ResolveSettings loads settings for cmd. Flags that were set explicitly
// win over the settings file and TASKRUN_ environment variables.
func ResolveSettings(cmd *cobra.Command) (config.Settings, error) {
	path := settingsPath
	if path == "" {
		path = filepath.Join(dir, config.DefaultSettingsFile)
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		return config.Settings{}, err
	}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("config") {
		s.Config = cfgPath
	}
	if changed("progress") {
		s.Progress = progress
	}
	if changed("metrics-file") {
		s.MetricsFile = metricsFile
	}
	if changed("log-level") {
		s.Log.Level = logLevel
	}
	if changed("log-json") {
		s.Log.JSON = logJSON
	}
	return s, nil
}

// LoadTaskFile reads the task file named by s, relative to dir.
func LoadTaskFile(s config.Settings, dir string) (config.TaskFile, error) {
	return config.LoadTasks(resolvePath(dir, s.Config))
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" || dir == "." {
		return p
	}
	return filepath.Join(dir, p)
}

// Options carry what a run needs from the host process.
type Options struct {
	Settings config.Settings
	Dir      string
	Stdin    io.Reader
	Stdout   io.Writer
}

// Execute compiles task and runs it once over files.
func Execute(ctx context.Context, o Options, task string, files []string) error {
	f, err := LoadTaskFile(o.Settings, o.Dir)
	if err != nil {
		return err
	}
	runner, err := Compile(f, task, builtin.Deps{Root: o.Dir, Stdin: o.Stdin, Stdout: o.Stdout})
	if err != nil {
		return err
	}

	rep := plugin.NewReporter()
	console.NewPrinter(o.Stdout, o.Settings.Progress).Attach(rep)
	logging.Attach(rep, logging.L())
	var metrics *telemetry.Collector
	if o.Settings.MetricsFile != "" {
		metrics = telemetry.NewCollector()
		metrics.Attach(rep)
	}

	log := logging.L().With("task", task, "run_id", rep.RunID().String())
	log.Debug("task start", "files", len(files))
	start := time.Now()
	out, runErr := runner(ctx, plugin.Props{Files: seedFiles(files), Reporter: rep})
	log.Info("task finished",
		"ok", runErr == nil,
		"files", len(out.Files),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)

	if metrics != nil {
		if err := metrics.WriteFile(resolvePath(o.Dir, o.Settings.MetricsFile)); err != nil {
			log.Warn("metrics write failed", "err", err)
		}
	}
	return evaluateRunExit(ctx, task, runErr)
}
