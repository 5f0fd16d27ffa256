package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
)

// Formats accepted by Options.Format.
const (
	FormatText   = "text"
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

// Options controls how the logger is built from the verbosity flags.
type Options struct {
	Output  io.Writer
	Name    string
	Verbose bool
	Silent  bool
	Debug   bool
	Format  string
}

// Level picks the log level for the verbosity flags. Silent wins over
// verbose and debug.
func (o Options) Level() log.Level {
	switch {
	case o.Silent:
		return log.ErrorLevel
	case o.Verbose || o.Debug:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// Setup builds a logger writing to opts.Output (stderr when nil).
func Setup(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          opts.Name,
		Level:           opts.Level(),
		Formatter:       formatter(opts.Format),
	})
	logger.SetStyles(styles())
	return logger
}

// FormatFor picks text output for terminals and logfmt otherwise.
func FormatFor(w io.Writer) string {
	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(f.Fd()) {
		return FormatText
	}
	return FormatLogfmt
}

func formatter(format string) log.Formatter {
	switch format {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Timestamp = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	s.Levels[log.InfoLevel] = s.Levels[log.InfoLevel].Foreground(lipgloss.Color("2"))
	return s
}
