// Package app is the mainline shared by appline tools: it parses the command
// line, sets up logging, runs the tool and turns whatever goes wrong into a
// readable message and an exit code.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/naoray/appline/internal/args"
	"github.com/naoray/appline/internal/env"
	apperrors "github.com/naoray/appline/internal/errors"
	"github.com/naoray/appline/internal/logging"
	"github.com/naoray/appline/internal/parser"
	"github.com/naoray/appline/internal/ui"
)

// Invocation is what Execute receives for one run.
type Invocation struct {
	Args *parser.Result
	// Extra is everything after "--".
	Extra string
	// CLIArgs are the parsed values grouped by category.
	CLIArgs map[string]any
	Logger  *log.Logger
	Output  io.Writer
}

// App describes a command-line tool. Only Execute is required.
type App struct {
	Name        string
	Description string
	Version     string

	// Positional maps leading positional tokens onto flags, in order.
	Positional []args.Replacement
	// Environment maps environment variables onto flag defaults.
	Environment args.EnvDefaults
	// Categories regroups "<category>_<rest>" values in Invocation.CLIArgs.
	Categories []string
	// EnvFiles are dotenv files read from the working directory, beneath the
	// process environment.
	EnvFiles []string
	// Environ overrides the environment snapshot entirely.
	Environ map[string]string

	AllowExtraArgs bool

	Output    io.Writer
	ErrOutput io.Writer
	LogOutput io.Writer
	LogFormat string

	SpecifyOtherArgs  parser.SpecifyArgsFunc
	SetupOtherLogging func(logger *log.Logger, opts logging.Options)
	Execute           func(ctx context.Context, inv *Invocation) error
}

// Main runs the app against os.Args and exits the process.
func (a *App) Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := a.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// Run calls the mainline and converts its outcome into an exit code. Errors
// carrying an appline kind are rendered as a banner on ErrOutput; anything
// else is printed as a plain error line. With --debug interrupts are left as
// they are and the full error is logged.
func (a *App) Run(ctx context.Context, argv []string) int {
	debug, logger, err := a.mainline(ctx, argv)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return apperrors.ExitSuccess
	}

	if debug {
		if logger != nil {
			logger.Error("run failed", "err", fmt.Sprintf("%+v", err))
		}
	} else {
		err = ui.NormalizeAbort(err)
	}

	if apperrors.IsStructured(err) {
		_, _ = fmt.Fprint(a.errOutput(), apperrors.Banner(err))
	} else {
		_, _ = fmt.Fprintf(a.errOutput(), "Error: %v\n", err)
	}
	return apperrors.ExitCode(err)
}

// Mainline parses argv, sets up logging and calls Execute.
func (a *App) Mainline(ctx context.Context, argv []string) error {
	_, _, err := a.mainline(ctx, argv)
	return err
}

func (a *App) mainline(ctx context.Context, argv []string) (bool, *log.Logger, error) {
	if a.Execute == nil {
		return false, nil, fmt.Errorf("app %q has no Execute hook", a.Name)
	}

	p, err := a.MakeParser()
	if err != nil {
		return false, nil, err
	}

	result, cliArgs, err := p.InterpretArgs(argv, a.Categories)
	if err != nil {
		return false, nil, err
	}

	logger := a.SetupLogging(result)

	if err := ctx.Err(); err != nil {
		return result.Debug, logger, err
	}

	err = a.Execute(ctx, &Invocation{
		Args:    result,
		Extra:   result.Extra,
		CLIArgs: cliArgs,
		Logger:  logger,
		Output:  a.output(),
	})
	return result.Debug, logger, err
}

// MakeParser builds the parser for this app.
func (a *App) MakeParser() (*parser.Parser, error) {
	environ := a.Environ
	if environ == nil {
		var err error
		environ, err = env.Load(".", a.EnvFiles...)
		if err != nil {
			return nil, err
		}
	}

	p := parser.New(a.Description, a.Positional, a.Environment)
	p.Name = a.Name
	p.Version = a.Version
	p.Environ = environ
	p.AllowExtraArgs = a.AllowExtraArgs
	p.SpecifyOtherArgs = a.SpecifyOtherArgs
	p.Out = a.Output
	return p, nil
}

// SetupLogging configures the logger from the parsed verbosity flags, makes
// it the default logger and calls SetupOtherLogging.
func (a *App) SetupLogging(result *parser.Result) *log.Logger {
	out := a.LogOutput
	if out == nil {
		out = os.Stderr
	}
	format := a.LogFormat
	if format == "" {
		format = logging.FormatFor(out)
	}

	opts := logging.Options{
		Output:  out,
		Name:    a.Name,
		Verbose: result.Verbose,
		Silent:  result.Silent,
		Debug:   result.Debug,
		Format:  format,
	}
	logger := logging.Setup(opts)
	log.SetDefault(logger)

	if a.SetupOtherLogging != nil {
		a.SetupOtherLogging(logger, opts)
	}
	return logger
}

func (a *App) output() io.Writer {
	if a.Output != nil {
		return a.Output
	}
	return os.Stdout
}

func (a *App) errOutput() io.Writer {
	if a.ErrOutput != nil {
		return a.ErrOutput
	}
	return os.Stdout
}
