package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/naoray/appline/internal/config"
	apperrors "github.com/naoray/appline/internal/errors"
	"github.com/naoray/appline/internal/exec"
	"github.com/naoray/appline/internal/ui"
)

// Runner executes appline tasks.
type Runner struct {
	Executor *exec.CommandExecutor
	Select   func(choices []ui.Choice) (string, error)
	Spin     func(title string, action func() error) error

	Out    io.Writer
	Logger *log.Logger
}

// Run loads the project file and runs the task named in opts. extra is
// appended to the task's command.
func (r *Runner) Run(ctx context.Context, opts Options, extra string) error {
	logger := r.logger()

	cfg, err := config.Load(opts.App.Config)
	if err != nil {
		return err
	}
	logger.Debug("loaded config", "path", opts.App.Config, "tasks", len(cfg.Tasks))

	task := opts.Task
	if opts.Pick {
		task, err = r.pick(cfg)
		if err != nil {
			return err
		}
	}

	if task == ListTasks {
		return r.listTasks(cfg)
	}

	return r.runTask(ctx, cfg, task, opts, extra)
}

func (r *Runner) pick(cfg *config.Config) (string, error) {
	if r.Select == nil {
		return "", fmt.Errorf("interactive selection is not available")
	}
	names := cfg.TaskNames()
	choices := make([]ui.Choice, 0, len(names))
	for _, name := range names {
		label := name
		if desc := cfg.Tasks[name].Description; desc != "" {
			label = fmt.Sprintf("%s - %s", name, desc)
		}
		choices = append(choices, ui.Choice{Label: label, Value: name})
	}
	return r.Select(choices)
}

func (r *Runner) listTasks(cfg *config.Config) error {
	out := r.out()
	names := cfg.TaskNames()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(out, "No tasks found")
		return nil
	}

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	_, _ = fmt.Fprintln(out, "Available tasks:")
	for _, name := range names {
		desc := cfg.Tasks[name].Description
		line := fmt.Sprintf("  %-*s  %s", width, name, desc)
		_, _ = fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	return nil
}

func (r *Runner) runTask(ctx context.Context, cfg *config.Config, name string, opts Options, extra string) error {
	task, err := cfg.Task(name)
	if err != nil {
		return err
	}

	envName := opts.Env
	if envName == "" {
		envName = cfg.DefaultEnv
	}
	vars := cfg.EnvironmentVars(envName)
	if envName != "" {
		vars["APPLINE_ENV"] = envName
	}
	dir := cfg.TaskDir(task)

	command := task.Command
	if extra != "" {
		command = command + " " + extra
	}

	if opts.App.DryRun {
		_, _ = fmt.Fprintf(r.out(), "would run in %s: %s\n", dir, command)
		return nil
	}

	r.logger().Info("running task", "task", name, "env", envName, "dir", dir)

	var output []byte
	action := func() error {
		var runErr error
		output, runErr = r.Executor.RunShell(ctx, dir, vars, task.Command, extra)
		return runErr
	}
	if r.Spin != nil {
		err = r.Spin(fmt.Sprintf("Running %s", name), action)
	} else {
		err = action()
	}

	_, _ = r.out().Write(output)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperrors.New(apperrors.ErrCommandFailed, "Task failed",
			apperrors.F("task", name),
			apperrors.F("error", err.Error()),
		)
	}
	return nil
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
