package exec

import (
	"context"
	"fmt"
	"strings"
)

// MockCommander records command calls and returns preset responses.
type MockCommander struct {
	// Responses maps "name arg1 arg2 ..." to a preset response.
	Responses map[string]CommandResponse

	Calls []Command
}

// CommandResponse is the preset output for one command key.
type CommandResponse struct {
	Output []byte
	Err    error
}

// NewMockCommander creates an empty MockCommander.
func NewMockCommander() *MockCommander {
	return &MockCommander{
		Responses: make(map[string]CommandResponse),
		Calls:     make([]Command, 0),
	}
}

// Run records cmd and returns its preset response, or nil, nil when none is
// configured.
func (m *MockCommander) Run(ctx context.Context, cmd Command) ([]byte, error) {
	m.Calls = append(m.Calls, cmd)

	if resp, ok := m.Responses[buildCommandKey(cmd.Name, cmd.Args)]; ok {
		return resp.Output, resp.Err
	}
	return nil, nil
}

// SetResponse configures the response for name with args.
func (m *MockCommander) SetResponse(name string, args []string, output []byte, err error) {
	m.Responses[buildCommandKey(name, args)] = CommandResponse{
		Output: output,
		Err:    err,
	}
}

// LastCall returns the most recent call, or nil if there was none.
func (m *MockCommander) LastCall() *Command {
	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}

// CallCount returns the number of recorded calls.
func (m *MockCommander) CallCount() int {
	return len(m.Calls)
}

func buildCommandKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, strings.Join(args, " "))
}
