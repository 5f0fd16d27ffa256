package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/x/term"
)

// Choice is one selectable entry in a prompt.
type Choice struct {
	Label string
	Value string
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// SelectTask asks the user to pick one of choices.
func SelectTask(choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no tasks available to select")
	}

	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c.Label, c.Value)
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a task").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", NormalizeAbort(err)
	}

	return selected, nil
}

// RunWithSpinner runs action behind a spinner when attached to a terminal,
// and directly otherwise.
func RunWithSpinner(title string, action func() error) error {
	if !IsInteractive() {
		return action()
	}

	var actionErr error
	err := spinner.New().
		Title(title).
		Action(func() {
			actionErr = action()
		}).
		Run()
	if err != nil {
		return NormalizeAbort(err)
	}
	return actionErr
}
