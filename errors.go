package pennywise

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("invalid input")
	// ErrDataShape matches every DataShapeError.
	ErrDataShape = errors.New("unexpected data shape")
)

// ValidationError reports bad local input. It is raised before any network
// call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DataShapeError reports a well-formed response that does not match the
// expected shape, e.g. an object where an array was expected.
type DataShapeError struct {
	Source string
	Reason string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *DataShapeError) Is(target error) bool { return target == ErrDataShape }
