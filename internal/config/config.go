package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/naoray/appline/internal/env"
	apperrors "github.com/naoray/appline/internal/errors"
)

// DefaultFile is where the task runner looks for its project file.
const DefaultFile = "./appline.yaml"

// Config represents the project configuration
type Config struct {
	DefaultEnv   string                       `mapstructure:"default_env"`
	Tasks        map[string]TaskConfig        `mapstructure:"tasks"`
	Environments map[string]EnvironmentConfig `mapstructure:"environments"`

	// Root is the directory holding the config file.
	Root string `mapstructure:"-"`
}

// TaskConfig represents a single runnable task
type TaskConfig struct {
	Description string `mapstructure:"description"`
	Command     string `mapstructure:"command"`
	Dir         string `mapstructure:"dir"`
}

// EnvironmentConfig holds the variables exported for one environment.
// Entries are KEY=VALUE strings; viper lowercases map keys, so a list keeps
// variable names intact.
type EnvironmentConfig struct {
	Env []string `mapstructure:"env"`
}

// Load reads the project configuration at path
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.ErrConfigNotFound, "Couldn't find the configuration", apperrors.F("path", path))
	}

	v := viper.New()
	v.SetConfigFile(absPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	config.Root = filepath.Dir(absPath)

	return &config, nil
}

// Task returns the named task. Names match case-insensitively, since viper
// lowercases map keys.
func (c *Config) Task(name string) (TaskConfig, error) {
	task, ok := c.Tasks[strings.ToLower(name)]
	if !ok {
		return TaskConfig{}, apperrors.New(apperrors.ErrTaskNotFound, "No such task", apperrors.F("task", name), apperrors.F("available", c.TaskNames()))
	}
	return task, nil
}

// TaskNames returns the task names in sorted order.
func (c *Config) TaskNames() []string {
	names := make([]string, 0, len(c.Tasks))
	for name := range c.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TaskDir returns the directory a task runs in: its dir relative to the
// config file, or the config file's directory.
func (c *Config) TaskDir(task TaskConfig) string {
	if task.Dir == "" {
		return c.Root
	}
	if filepath.IsAbs(task.Dir) {
		return task.Dir
	}
	return filepath.Join(c.Root, task.Dir)
}

// EnvironmentVars returns the variables declared for the named environment.
// An empty name falls back to default_env. Names match case-insensitively.
// An environment the file does not declare yields no variables.
func (c *Config) EnvironmentVars(name string) map[string]string {
	if name == "" {
		name = c.DefaultEnv
	}
	environment, ok := c.Environments[strings.ToLower(name)]
	if !ok {
		return map[string]string{}
	}
	return env.FromList(environment.Env)
}
