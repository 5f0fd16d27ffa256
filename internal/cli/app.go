// Package cli defines appline, a small project task runner built on the
// app mainline.
//
//	appline [TASK] [ENV] [flags] [-- extra args for the task]
package cli

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"

	"github.com/naoray/appline/internal/app"
	"github.com/naoray/appline/internal/args"
	"github.com/naoray/appline/internal/config"
	"github.com/naoray/appline/internal/exec"
	"github.com/naoray/appline/internal/ui"
)

// ListTasks is the task that prints the available tasks.
const ListTasks = "list_tasks"

// Options are the parsed command-line values of appline.
type Options struct {
	Task string `mapstructure:"task"`
	Env  string `mapstructure:"env"`
	Pick bool   `mapstructure:"pick"`
	App  struct {
		Config string `mapstructure:"config"`
		DryRun bool   `mapstructure:"dry_run"`
	} `mapstructure:"app"`

	Verbose bool `mapstructure:"verbose"`
	Silent  bool `mapstructure:"silent"`
	Debug   bool `mapstructure:"debug"`
}

// New returns the appline application wired to the real command executor.
func New() *app.App {
	return NewWithRunner(&Runner{
		Executor: exec.NewCommandExecutor(nil),
		Select:   ui.SelectTask,
		Spin:     ui.RunWithSpinner,
	})
}

// NewWithRunner returns the appline application using runner for tasks.
func NewWithRunner(runner *Runner) *app.App {
	return &app.App{
		Name:        "appline",
		Description: "Run project tasks declared in appline.yaml",
		Version:     VersionString(),
		Positional: []args.Replacement{
			args.NameWithDefault("--task", ListTasks),
			args.Name("--env"),
		},
		Environment: args.EnvDefaults{
			"APPLINE_CONFIG": args.NameWithDefault("--app-config", config.DefaultFile),
			"APPLINE_ENV":    args.Name("--env"),
		},
		Categories:       []string{"app"},
		EnvFiles:         []string{".env"},
		SpecifyOtherArgs: specifyArgs,
		Execute: func(ctx context.Context, inv *app.Invocation) error {
			opts, err := DecodeOptions(inv.CLIArgs)
			if err != nil {
				return err
			}
			r := *runner
			r.Out = inv.Output
			r.Logger = inv.Logger
			return r.Run(ctx, opts, inv.Extra)
		},
	}
}

func specifyArgs(fs *pflag.FlagSet, defaults args.Defaults) error {
	fs.String("task", "", "The task to run. Give it as the first positional argument, since --task conflicts with the list_tasks fallback")
	fs.String("env", "", "The environment to run the task in")
	fs.Bool("pick", false, "Choose the task interactively")
	fs.String("app-config", "", "Location of the appline.yaml project file")
	fs.Bool("app-dry-run", false, "Print the command instead of running it")
	return defaults.Apply(fs)
}

// DecodeOptions converts categorized CLI values into Options.
func DecodeOptions(cliArgs map[string]any) (Options, error) {
	var opts Options
	if err := mapstructure.Decode(cliArgs, &opts); err != nil {
		return Options{}, fmt.Errorf("decoding options: %w", err)
	}
	return opts, nil
}
