package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var V = validator.New()

// Validate checks v against its struct tags, reporting failures as ErrValidation
func Validate(v any) error {
	err := V.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	problems := make([]string, len(validationErrors))
	for i, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			problems[i] = fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
		case "max":
			problems[i] = fmt.Sprintf("%s must be at most %s characters", strings.ToLower(fe.Field()), fe.Param())
		default:
			problems[i] = fmt.Sprintf("%s failed %q validation", strings.ToLower(fe.Field()), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
}
