package ui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/huh"

	apperrors "github.com/naoray/appline/internal/errors"
)

// NormalizeAbort converts the ways a user can bail out of a run into
// apperrors.ErrUserQuit: huh.ErrUserAborted (Esc/Ctrl+C in prompts), io.EOF
// (Ctrl+D/closed stdin) and context.Canceled (SIGINT on the run context).
func NormalizeAbort(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, huh.ErrUserAborted) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) {
		return apperrors.ErrUserQuit
	}
	return err
}

// IsAbort returns true if the error represents a user abort.
func IsAbort(err error) bool {
	return errors.Is(NormalizeAbort(err), apperrors.ErrUserQuit)
}
