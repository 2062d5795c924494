package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start when a marker file already exists.
	// The existing worker, if any, is left untouched.
	ErrAlreadyRunning = errors.New("worker already running")

	// ErrNotRunning is returned by Stop when no marker file exists.
	ErrNotRunning = errors.New("worker not running")
)

// SignalError reports a failure to deliver the termination signal to the
// recorded PID. The marker file is retained so an operator can reconcile.
type SignalError struct {
	PID int
	Err error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("failed to signal pid %d: %v", e.PID, e.Err)
}

func (e *SignalError) Unwrap() error { return e.Err }
