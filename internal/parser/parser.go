// Package parser turns a command line into parsed flag values. It resolves
// defaults from positional tokens and the environment, hands them to a cobra
// command built from a flag schema hook, and rejects flags given both as a
// positional and explicitly.
package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/naoray/appline/internal/args"
	"github.com/naoray/appline/internal/env"
	apperrors "github.com/naoray/appline/internal/errors"
)

// destAnnotation overrides the key a flag's value is stored under.
const destAnnotation = "appline_dest"

// SpecifyArgsFunc declares extra flags on fs. defaults holds the resolved
// defaults keyed by long-form flag name.
type SpecifyArgsFunc func(fs *pflag.FlagSet, defaults args.Defaults) error

// Parser knows what argv looks like for one application.
type Parser struct {
	Name        string
	Description string
	Version     string

	Positional  []args.Replacement
	Environment args.EnvDefaults
	// Environ is the environment snapshot. Nil means the process environment.
	Environ map[string]string

	// AllowExtraArgs accepts positional tokens left after replacement
	// instead of failing with a usage error.
	AllowExtraArgs bool

	SpecifyOtherArgs SpecifyArgsFunc

	// Out receives help, version and usage output. Nil keeps cobra's
	// stdout/stderr defaults.
	Out io.Writer
}

// Result is a parsed command line.
type Result struct {
	Flags *pflag.FlagSet
	// Values holds every flag value keyed by destination name.
	Values map[string]any
	// Extra is everything after "--", joined with spaces.
	Extra string
	// Remaining holds unconsumed positional tokens when AllowExtraArgs is set.
	Remaining []string

	Verbose bool
	Silent  bool
	Debug   bool
}

// New returns a Parser with the given description and declarations.
func New(description string, positional []args.Replacement, environment args.EnvDefaults) *Parser {
	return &Parser{
		Description: description,
		Positional:  positional,
		Environment: environment,
	}
}

// SplitArgs separates argv into parser tokens, the passthrough string and
// the resolved defaults.
func (p *Parser) SplitArgs(argv []string) args.Split {
	if argv == nil {
		argv = os.Args[1:]
	}
	environ := p.Environ
	if environ == nil {
		environ = env.Snapshot()
	}
	return args.SplitArgs(argv, p.Positional, p.Environment, environ)
}

// MakeParser builds the cobra command: the mutually exclusive logging flags
// plus whatever SpecifyOtherArgs declares.
func (p *Parser) MakeParser(defaults args.Defaults) (*cobra.Command, error) {
	name := p.Name
	if name == "" {
		name = "app"
	}

	cmd := &cobra.Command{
		Use:           name,
		Short:         p.Description,
		Long:          p.Description,
		Version:       p.Version,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return nil
		},
	}
	if p.AllowExtraArgs {
		cmd.Args = cobra.ArbitraryArgs
	}
	if p.Out != nil {
		cmd.SetOut(p.Out)
		cmd.SetErr(p.Out)
	}

	flags := cmd.Flags()
	flags.Bool("verbose", false, "Enable debug logging")
	flags.Bool("silent", false, "Only log errors")
	flags.Bool("debug", false, "Debug logs")
	cmd.MarkFlagsMutuallyExclusive("verbose", "silent", "debug")

	if p.SpecifyOtherArgs != nil {
		if err := p.SpecifyOtherArgs(flags, defaults); err != nil {
			return nil, fmt.Errorf("specifying args: %w", err)
		}
	}

	return cmd, nil
}

// ParseArgs splits, parses and checks argv. It returns pflag.ErrHelp when
// help or version output was requested and printed instead.
func (p *Parser) ParseArgs(argv []string) (*Result, error) {
	split := p.SplitArgs(argv)

	cmd, err := p.MakeParser(split.Defaults)
	if err != nil {
		return nil, err
	}

	var remaining []string
	ran := false
	cmd.RunE = func(_ *cobra.Command, rest []string) error {
		ran = true
		remaining = rest
		return nil
	}

	tokens := split.Args
	if tokens == nil {
		tokens = []string{}
	}
	cmd.SetArgs(tokens)

	if err := cmd.Execute(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUsage, err)
	}
	if !ran {
		return nil, pflag.ErrHelp
	}

	if err := args.CheckConflicts(split.Args, split.Defaults, p.Positional); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	result := &Result{
		Flags:     flags,
		Values:    values(flags),
		Extra:     split.Passthrough,
		Remaining: remaining,
	}
	result.Verbose, _ = flags.GetBool("verbose")
	result.Silent, _ = flags.GetBool("silent")
	result.Debug, _ = flags.GetBool("debug")

	return result, nil
}

// InterpretArgs parses argv and also returns the values regrouped by
// category prefix.
func (p *Parser) InterpretArgs(argv []string, categories []string) (*Result, map[string]any, error) {
	result, err := p.ParseArgs(argv)
	if err != nil {
		return nil, nil, err
	}
	return result, args.Categorize(result.Values, categories), nil
}

// SetDest stores the value of flag under dest instead of its own name.
func SetDest(fs *pflag.FlagSet, flag, dest string) error {
	return fs.SetAnnotation(args.FlagName(flag), destAnnotation, []string{dest})
}

// Dest returns the key the value of f is stored under: the dest annotation
// when set, otherwise the flag name with dashes turned into underscores.
func Dest(f *pflag.Flag) string {
	if dest, ok := f.Annotations[destAnnotation]; ok && len(dest) > 0 {
		return dest[0]
	}
	return strings.ReplaceAll(f.Name, "-", "_")
}

func values(fs *pflag.FlagSet) map[string]any {
	out := map[string]any{}
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || f.Name == "version" {
			return
		}
		out[Dest(f)] = typedValue(f)
	})
	return out
}

func typedValue(f *pflag.Flag) any {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		return sv.GetSlice()
	}

	raw := f.Value.String()
	switch f.Value.Type() {
	case "bool":
		return cast.ToBool(raw)
	case "int", "count":
		return cast.ToInt(raw)
	case "int8", "int16", "int32", "int64":
		return cast.ToInt64(raw)
	case "uint", "uint8", "uint16", "uint32", "uint64":
		return cast.ToUint64(raw)
	case "float32", "float64":
		return cast.ToFloat64(raw)
	case "duration":
		return cast.ToDuration(raw)
	default:
		return raw
	}
}
