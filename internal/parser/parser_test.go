package parser

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naoray/appline/internal/args"
	apperrors "github.com/naoray/appline/internal/errors"
)

func newTestParser(positional []args.Replacement, specify SpecifyArgsFunc) *Parser {
	p := New("test app", positional, nil)
	p.Name = "testapp"
	p.Environ = map[string]string{}
	p.Out = &bytes.Buffer{}
	p.SpecifyOtherArgs = specify
	return p
}

func TestNew_Declarations(t *testing.T) {
	positional := []args.Replacement{args.Name("--task")}
	environment := args.EnvDefaults{"APP_CONFIG": args.Name("--config")}

	p := New("description", positional, environment)

	assert.Equal(t, "description", p.Description)
	assert.Equal(t, positional, p.Positional)
	assert.Equal(t, environment, p.Environment)
}

func TestParseArgs_Works(t *testing.T) {
	p := newTestParser(
		[]args.Replacement{args.NameWithDefault("--task", "list_tasks"), args.Name("--blah")},
		func(fs *pflag.FlagSet, defaults args.Defaults) error {
			fs.String("task", defaults.Value("--task", ""), "specify the task")
			fs.String("blah", defaults.Value("--blah", ""), "I don't know")
			fs.String("meh", "", "I don't know")
			return nil
		},
	)

	result, err := p.ParseArgs([]string{"whatever", "tree", "--meh", "bus", "--", "--blah", "fire"})

	require.NoError(t, err)
	assert.Equal(t, "--blah fire", result.Extra)
	assert.Equal(t, "whatever", result.Values["task"])
	assert.Equal(t, "tree", result.Values["blah"])
	assert.Equal(t, "bus", result.Values["meh"])
}

func TestParseArgs_PositionalFallback(t *testing.T) {
	p := newTestParser(
		[]args.Replacement{args.NameWithDefault("--task", "list_tasks")},
		func(fs *pflag.FlagSet, defaults args.Defaults) error {
			fs.String("task", "", "specify the task")
			return defaults.Apply(fs)
		},
	)

	result, err := p.ParseArgs([]string{})

	require.NoError(t, err)
	assert.Equal(t, "list_tasks", result.Values["task"])
}

func TestParseArgs_ExplicitFlagWithoutDefault(t *testing.T) {
	p := newTestParser(
		[]args.Replacement{args.Name("--task")},
		func(fs *pflag.FlagSet, defaults args.Defaults) error {
			fs.String("task", "", "specify the task")
			return defaults.Apply(fs)
		},
	)

	result, err := p.ParseArgs([]string{"--task", "build"})

	require.NoError(t, err)
	assert.Equal(t, "build", result.Values["task"])
}

func TestParseArgs_Conflict(t *testing.T) {
	p := newTestParser(
		[]args.Replacement{args.Name("--task")},
		func(fs *pflag.FlagSet, defaults args.Defaults) error {
			fs.String("task", defaults.Value("--task", ""), "specify the task")
			return nil
		},
	)

	_, err := p.ParseArgs([]string{"whatever", "--task", "whatever", "--", "--task", "fire"})

	var conflict *args.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, "--task", conflict.Argument)
	assert.Equal(t, 1, conflict.Position)
	assert.True(t, errors.Is(err, apperrors.ErrBadOption))
}

func TestParseArgs_EnvironmentDefault(t *testing.T) {
	p := newTestParser(nil, func(fs *pflag.FlagSet, defaults args.Defaults) error {
		fs.String("config", "", "config file")
		return defaults.Apply(fs)
	})
	p.Environment = args.EnvDefaults{"CONFIG_LOCATION": args.NameWithDefault("--config", "a/nicer/place.yml")}

	result, err := p.ParseArgs([]string{})
	require.NoError(t, err)
	assert.Equal(t, "a/nicer/place.yml", result.Values["config"])

	p.Environ = map[string]string{"CONFIG_LOCATION": "/from/env.yml"}
	result, err = p.ParseArgs([]string{})
	require.NoError(t, err)
	assert.Equal(t, "/from/env.yml", result.Values["config"])

	result, err = p.ParseArgs([]string{"--config", "/explicit.yml"})
	require.NoError(t, err)
	assert.Equal(t, "/explicit.yml", result.Values["config"])
}

func TestParseArgs_LoggingFlags(t *testing.T) {
	p := newTestParser(nil, nil)

	result, err := p.ParseArgs([]string{})
	require.NoError(t, err)
	assert.False(t, result.Verbose)
	assert.False(t, result.Silent)
	assert.False(t, result.Debug)
	assert.Equal(t, map[string]any{"verbose": false, "silent": false, "debug": false}, result.Values)

	for _, flag := range []string{"verbose", "silent", "debug"} {
		t.Run(flag, func(t *testing.T) {
			result, err := p.ParseArgs([]string{"--" + flag})
			require.NoError(t, err)
			assert.Equal(t, flag == "verbose", result.Verbose)
			assert.Equal(t, flag == "silent", result.Silent)
			assert.Equal(t, flag == "debug", result.Debug)
		})
	}
}

func TestParseArgs_LoggingFlagsMutuallyExclusive(t *testing.T) {
	combinations := [][]string{
		{"--verbose", "--silent"},
		{"--verbose", "--debug"},
		{"--silent", "--debug"},
		{"--verbose", "--silent", "--debug"},
	}

	for _, combination := range combinations {
		p := newTestParser(nil, nil)
		_, err := p.ParseArgs(combination)
		require.Error(t, err, "%v should have failed", combination)
		assert.True(t, errors.Is(err, apperrors.ErrUsage))
		assert.Equal(t, apperrors.ExitInvalidArguments, apperrors.ExitCode(err))
	}
}

func TestParseArgs_UsageErrors(t *testing.T) {
	p := newTestParser(nil, nil)

	_, err := p.ParseArgs([]string{"--unknown"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUsage))

	_, err = p.ParseArgs([]string{"stray"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUsage))
}

func TestParseArgs_AllowExtraArgs(t *testing.T) {
	p := newTestParser([]args.Replacement{args.Name("--task")}, func(fs *pflag.FlagSet, defaults args.Defaults) error {
		fs.String("task", defaults.Value("--task", ""), "specify the task")
		return nil
	})
	p.AllowExtraArgs = true

	result, err := p.ParseArgs([]string{"build", "one", "two"})

	require.NoError(t, err)
	assert.Equal(t, "build", result.Values["task"])
	assert.Equal(t, []string{"one", "two"}, result.Remaining)
}

func TestParseArgs_Help(t *testing.T) {
	out := &bytes.Buffer{}
	p := newTestParser(nil, nil)
	p.Out = out

	_, err := p.ParseArgs([]string{"--help"})

	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, out.String(), "test app")
	assert.Contains(t, out.String(), "Only log errors")
}

func TestParseArgs_Version(t *testing.T) {
	out := &bytes.Buffer{}
	p := newTestParser(nil, nil)
	p.Version = "1.2.3"
	p.Out = out

	_, err := p.ParseArgs([]string{"--version"})

	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, out.String(), "1.2.3")
}

func TestParseArgs_SpecifyOtherArgsError(t *testing.T) {
	p := newTestParser(nil, func(fs *pflag.FlagSet, defaults args.Defaults) error {
		return errors.New("nope")
	})

	_, err := p.ParseArgs([]string{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "specifying args: nope")
}

func TestMakeParser_PassesDefaults(t *testing.T) {
	var seen args.Defaults
	p := newTestParser(nil, func(fs *pflag.FlagSet, defaults args.Defaults) error {
		seen = defaults
		return nil
	})
	defaults := args.Defaults{"--task": {Default: "x", HasDefault: true}}

	cmd, err := p.MakeParser(defaults)

	require.NoError(t, err)
	assert.Equal(t, "testapp", cmd.Use)
	assert.Equal(t, defaults, seen)
	assert.NotNil(t, cmd.Flags().Lookup("verbose"))
	assert.NotNil(t, cmd.Flags().Lookup("silent"))
	assert.NotNil(t, cmd.Flags().Lookup("debug"))
}

func TestInterpretArgs_Categories(t *testing.T) {
	p := newTestParser(nil, func(fs *pflag.FlagSet, defaults args.Defaults) error {
		fs.String("one", "", "")
		fs.String("two", "", "")
		fs.String("other", "", "")
		if err := SetDest(fs, "--one", "my_app_one"); err != nil {
			return err
		}
		return SetDest(fs, "--two", "my_app_two")
	})

	result, cliArgs, err := p.InterpretArgs([]string{"--one", "1", "--two", "2", "--other", "3"}, []string{"my_app"})

	require.NoError(t, err)
	assert.Equal(t, "", result.Extra)
	assert.Equal(t, "1", result.Values["my_app_one"])
	assert.Equal(t, "2", result.Values["my_app_two"])
	assert.Equal(t, "3", result.Values["other"])
	assert.Equal(t, map[string]any{
		"my_app":  map[string]any{"one": "1", "two": "2"},
		"other":   "3",
		"silent":  false,
		"debug":   false,
		"verbose": false,
	}, cliArgs)
}

func TestInterpretArgs_DashesBecomeUnderscores(t *testing.T) {
	p := newTestParser(nil, func(fs *pflag.FlagSet, defaults args.Defaults) error {
		fs.String("app-config", "x.yml", "")
		fs.Int("app-workers", 4, "")
		fs.StringSlice("tags", nil, "")
		return nil
	})

	_, cliArgs, err := p.InterpretArgs([]string{"--tags", "a,b"}, []string{"app"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"config": "x.yml", "workers": 4}, cliArgs["app"])
	assert.Equal(t, []string{"a", "b"}, cliArgs["tags"])
}
