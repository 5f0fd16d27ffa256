package args

import (
	"sort"
	"strings"
)

// Separator marks the point after which tokens are passed through verbatim.
const Separator = "--"

// Split is the result of SplitArgs.
type Split struct {
	// Args are the tokens left for the flag parser.
	Args []string
	// Passthrough is everything after the separator, joined with spaces.
	Passthrough string
	Defaults    Defaults
}

// SplitTokens separates tokens at the first Separator. The separator itself
// is dropped.
func SplitTokens(tokens []string) ([]string, string) {
	for i, tok := range tokens {
		if tok == Separator {
			before := append([]string{}, tokens[:i]...)
			return before, strings.Join(tokens[i+1:], " ")
		}
	}
	return append([]string{}, tokens...), ""
}

// SplitArgs splits tokens into parser tokens and a passthrough string, then
// resolves defaults over the parser tokens. Consumed positional tokens are
// removed from Split.Args.
func SplitArgs(tokens []string, positional []Replacement, envDefaults EnvDefaults, environ map[string]string) Split {
	before, passthrough := SplitTokens(tokens)
	defaults, remaining := ResolveDefaults(before, positional, envDefaults, environ)
	return Split{
		Args:        remaining,
		Passthrough: passthrough,
		Defaults:    defaults,
	}
}

// ResolveDefaults computes a default for every declared flag and returns the
// tokens left after consuming leading positionals. tokens is not modified.
//
// Environment declarations are applied first, then leading positional
// tokens overwrite them. A positional fallback only applies to flags no
// environment declaration mentions, so an environment fallback (or an
// explicit "no default") shadows it.
func ResolveDefaults(tokens []string, positional []Replacement, envDefaults EnvDefaults, environ map[string]string) (Defaults, []string) {
	defaults := Defaults{}
	remaining := append([]string{}, tokens...)

	for _, name := range sortedKeys(envDefaults) {
		r := envDefaults[name]
		if value, ok := environ[name]; ok {
			defaults[r.Flag] = Option{Default: value, HasDefault: true}
			continue
		}
		defaults[r.Flag] = r.fallback()
	}

	for _, r := range positional {
		if len(remaining) == 0 || IsFlag(remaining[0]) {
			break
		}
		defaults[r.Flag] = Option{Default: remaining[0], HasDefault: true}
		remaining = remaining[1:]
	}

	for _, r := range positional {
		if _, ok := defaults[r.Flag]; !ok {
			defaults[r.Flag] = r.fallback()
		}
	}

	return defaults, remaining
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
