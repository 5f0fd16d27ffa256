// Package args computes the default value each named flag should receive
// before parsing. Defaults come from environment variables and from leading
// positional tokens, combined with a fixed precedence order.
package args

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	apperrors "github.com/naoray/appline/internal/errors"
)

// Replacement maps a positional slot or an environment variable onto a flag.
// Flag is the long-form flag name including its marker, e.g. "--task".
type Replacement struct {
	Flag       string
	Default    string
	HasDefault bool
}

// Name declares a replacement with no fallback default.
func Name(flag string) Replacement {
	return Replacement{Flag: flag}
}

// NameWithDefault declares a replacement that falls back to value.
func NameWithDefault(flag, value string) Replacement {
	return Replacement{Flag: flag, Default: value, HasDefault: true}
}

func (r Replacement) fallback() Option {
	if r.HasDefault {
		return Option{Default: r.Default, HasDefault: true}
	}
	return Option{}
}

// EnvDefaults maps environment variable names to the flag they provide a
// default for.
type EnvDefaults map[string]Replacement

// Option is the configuration handed to the flag parser for one flag. A zero
// Option means the flag is known but has no default.
type Option struct {
	Default    string
	HasDefault bool
}

// Defaults is the resolved mapping from long-form flag name to its Option.
type Defaults map[string]Option

// Lookup returns the default for flag, if one was resolved.
func (d Defaults) Lookup(flag string) (string, bool) {
	opt, ok := d[flag]
	if !ok || !opt.HasDefault {
		return "", false
	}
	return opt.Default, true
}

// Value returns the default for flag, or fallback when there is none.
func (d Defaults) Value(flag, fallback string) string {
	if v, ok := d.Lookup(flag); ok {
		return v
	}
	return fallback
}

// Apply sets every resolved default onto the matching flag in fs. Every key
// must name a flag declared in fs.
func (d Defaults) Apply(fs *pflag.FlagSet) error {
	for _, flag := range sortedKeys(d) {
		f := fs.Lookup(FlagName(flag))
		if f == nil {
			return apperrors.New(apperrors.ErrBadOption, "Default given for an undeclared flag", apperrors.F("argument", flag))
		}
		opt := d[flag]
		if !opt.HasDefault {
			continue
		}
		if err := f.Value.Set(opt.Default); err != nil {
			return fmt.Errorf("setting default for %s: %w", flag, err)
		}
		f.DefValue = f.Value.String()
	}
	return nil
}

// FlagName strips the marker from a long-form flag: "--task" becomes "task".
func FlagName(flag string) string {
	return strings.TrimLeft(flag, "-")
}

// IsFlag reports whether token looks like a flag. Anything starting with "-"
// counts, so negative numbers are treated as flags too.
func IsFlag(token string) bool {
	return strings.HasPrefix(token, "-")
}
