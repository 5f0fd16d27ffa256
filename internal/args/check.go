package args

import (
	"fmt"

	apperrors "github.com/naoray/appline/internal/errors"
)

const conflictMessage = "Please don't specify an option as a positional argument and as a --flag"

// ConflictError reports a flag given both through its positional slot (or a
// resolved default) and explicitly on the command line.
type ConflictError struct {
	Argument string
	// Position is the 1-based index of the positional slot.
	Position int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: argument=%s position=%d", conflictMessage, e.Argument, e.Position)
}

// Msg returns the message without context.
func (e *ConflictError) Msg() string {
	return conflictMessage
}

func (e *ConflictError) Fields() []apperrors.Field {
	return []apperrors.Field{
		apperrors.F("argument", e.Argument),
		apperrors.F("position", e.Position),
	}
}

func (e *ConflictError) Unwrap() error {
	return apperrors.ErrBadOption
}

// CheckConflicts fails when a positional flag has a resolved default and also
// appears literally among tokens.
func CheckConflicts(tokens []string, defaults Defaults, positional []Replacement) error {
	present := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		present[tok] = true
	}

	for i, r := range positional {
		if _, ok := defaults.Lookup(r.Flag); ok && present[r.Flag] {
			return &ConflictError{Argument: r.Flag, Position: i + 1}
		}
	}
	return nil
}
