package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks samples or parameters rejected before any computation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericComputation marks a test whose inputs passed validation but
	// could not produce a finite statistic (for example a zero standard error).
	ErrNumericComputation = errors.New("numeric computation failed")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func numericf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNumericComputation, fmt.Sprintf(format, args...))
}
