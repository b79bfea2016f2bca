package repository

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/versioning"
)

// translate maps a gorm error onto the domain taxonomy
func translate(err error) error {
	return versioning.TranslateError(err)
}

// duplicateName reports a unique violation on a name or slug as ErrDuplicateName
func duplicateName(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, fmt.Sprintf(format, args...))
	}
	return err
}

func logFailure(operation string, err error, attrs ...any) {
	slog.Error("Database operation failed",
		append([]any{"layer", "repository", "operation", operation, "error", err}, attrs...)...)
}
