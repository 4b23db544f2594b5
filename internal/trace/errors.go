package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates a script line that does not parse.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrUnknownHandle indicates a reference to a name no earlier step bound.
	ErrUnknownHandle = errors.New("trace: unknown handle")

	// ErrNullHandle indicates fill or expect on a handle that is null.
	ErrNullHandle = errors.New("trace: null handle")

	// ErrExpectation indicates a failed expect or errno assertion.
	ErrExpectation = errors.New("trace: expectation failed")

	// ErrAborted indicates the heap aborted on a step.
	ErrAborted = errors.New("trace: heap aborted")
)

// LineError ties an error to the script line that caused it.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
