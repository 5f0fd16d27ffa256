// Package env takes snapshots of the process environment so that default
// resolution can work on a plain map instead of global state.
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
)

// Snapshot returns the current process environment as a map.
func Snapshot() map[string]string {
	return FromList(os.Environ())
}

// FromList builds a map from KEY=VALUE entries. Entries without "=" are
// skipped; a later entry replaces an earlier one.
func FromList(entries []string) map[string]string {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

// ReadFile parses a dotenv file in dir. A missing file yields an empty map.
func ReadFile(dir, name string) (map[string]string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening env file: %w", err)
	}
	defer f.Close()

	parsed, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return parsed, nil
}

// Merge layers maps left to right: values in later maps win.
func Merge(layers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// Load reads each dotenv file relative to dir and lays the process snapshot
// on top, so variables exported in the shell always win over file values.
func Load(dir string, files ...string) (map[string]string, error) {
	var layers []map[string]string
	for _, name := range files {
		values, err := ReadFile(dir, name)
		if err != nil {
			return nil, err
		}
		layers = append(layers, values)
	}
	layers = append(layers, Snapshot())
	return Merge(layers...), nil
}
