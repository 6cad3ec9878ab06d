package service

import (
	"errors"
	"fmt"
)

// ErrValidation marks caller-input failures so HTTP glue can map them to 400s.
var ErrValidation = errors.New("validation failed")

// ErrNotFound marks lookups for entities that do not exist.
var ErrNotFound = errors.New("not found")

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
