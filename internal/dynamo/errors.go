package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for sweep operations.
var (
	// ErrInvalidExpression indicates text that cannot be parsed or differentiated.
	ErrInvalidExpression = errors.New("dynamo: invalid expression")

	// ErrParameterBounds indicates a non-finite or inverted parameter range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrSearchWindow indicates an empty or non-finite state search window.
	ErrSearchWindow = errors.New("dynamo: invalid search window")

	// ErrInvalidSteps indicates a negative sample count.
	ErrInvalidSteps = errors.New("dynamo: invalid number of steps")

	// ErrContextCanceled indicates the sweep was interrupted.
	ErrContextCanceled = errors.New("dynamo: sweep canceled by context")
)

// ExpressionError wraps a parse failure with the original text.
type ExpressionError struct {
	Expr    string
	Wrapped error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %q: %v", e.Expr, e.Wrapped)
}

func (e *ExpressionError) Unwrap() []error {
	return []error{ErrInvalidExpression, e.Wrapped}
}

// SweepError wraps an error with the sample at which the sweep stopped.
type SweepError struct {
	Step    int
	R       float64
	Wrapped error
}

func (e *SweepError) Error() string {
	return fmt.Sprintf("sweep stopped at step %d (r=%g): %v", e.Step, e.R, e.Wrapped)
}

func (e *SweepError) Unwrap() error {
	return e.Wrapped
}
