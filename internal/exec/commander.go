// Package exec runs external commands behind an interface so task execution
// can be exercised in tests without spawning processes.
package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Command describes one process to run.
type Command struct {
	Dir  string
	Name string
	Args []string
	// Env is added on top of the current process environment.
	Env map[string]string
}

// Commander runs commands and returns their combined stdout and stderr.
type Commander interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// RealCommander executes commands using the operating system.
type RealCommander struct{}

// Run executes cmd with exec.CommandContext.
func (c *RealCommander) Run(ctx context.Context, cmd Command) ([]byte, error) {
	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		proc.Env = append(os.Environ(), EnvList(cmd.Env)...)
	}
	return proc.CombinedOutput()
}

// EnvList renders env as sorted KEY=VALUE entries.
func EnvList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// CommandExecutor wraps a Commander with shell conveniences.
type CommandExecutor struct {
	commander Commander
}

// NewCommandExecutor creates a CommandExecutor. A nil commander means
// RealCommander.
func NewCommandExecutor(commander Commander) *CommandExecutor {
	if commander == nil {
		commander = &RealCommander{}
	}
	return &CommandExecutor{commander: commander}
}

// RunShell runs script through sh -c. Any extra text is appended to the
// script after a space, so passthrough arguments reach the last command.
func (e *CommandExecutor) RunShell(ctx context.Context, dir string, env map[string]string, script string, extra string) ([]byte, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return nil, fmt.Errorf("empty command")
	}
	if extra != "" {
		script = script + " " + extra
	}
	return e.commander.Run(ctx, Command{
		Dir:  dir,
		Name: "sh",
		Args: []string{"-c", script},
		Env:  env,
	})
}
