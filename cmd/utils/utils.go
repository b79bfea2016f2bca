// Package utils provides utility functions for Cabotage CLI commands.
package utils

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cabotage/cabotage/domain"
)

// CommandError is a failed CLI operation. Its message is meant for the user.
type CommandError struct {
	Operation string
	Err       error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, FormatErrorForUser(e.Err))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// HandleCommandError logs err and returns it as a CommandError
func HandleCommandError(operation string, err error, context ...any) error {
	slog.Error("Command failed", append([]any{"operation", operation, "error", err}, context...)...)
	return &CommandError{Operation: operation, Err: err}
}

// FormatErrorForUser turns domain errors into short explanations
func FormatErrorForUser(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "the requested entity does not exist or has been deleted"
	case errors.Is(err, domain.ErrDuplicateName):
		return "the name is already in use"
	case errors.Is(err, domain.ErrConflict):
		return "the entity was modified concurrently, reload and retry"
	case errors.Is(err, domain.ErrMalformedKey):
		return "a configuration key has no backend prefix"
	default:
		return err.Error()
	}
}

// ParseID parses input as the uuid of the named entity kind
func ParseID(kind, input string) (uuid.UUID, error) {
	id, err := uuid.Parse(input)
	if err != nil {
		slog.Warn("Invalid UUID provided", "kind", kind, "input", input)
		return uuid.Nil, fmt.Errorf("invalid %s ID '%s': must be a valid UUID", kind, input)
	}
	return id, nil
}
