package cli

import "fmt"

// Process exit codes. Zero means every run in scope succeeded.
const (
	ExitPartialFailure = 1
	ExitSetup          = 2
)

// ExitError pairs an error with the exit code main should use.
type ExitError struct {
	Code int
	Err  error
}

// Error implements the error interface.
func (e *ExitError) Error() string { return e.Err.Error() }

// Unwrap exposes the underlying error for errors.Is/As.
func (e *ExitError) Unwrap() error { return e.Err }

// setupError builds an exit-2 error for configuration and I/O failures
// that prevent the requested work from starting.
func setupError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitSetup, Err: fmt.Errorf(format, args...)}
}
