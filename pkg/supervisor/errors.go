package supervisor

import (
	"context"
	"errors"
	"fmt"
)

// ErrShutdownTimeout is returned by Shutdown when the deadline elapses
// before all services have returned. Run may still be executing in the
// background; the caller should consider forceful process termination.
var ErrShutdownTimeout = errors.New("timeout waiting for shutdown")

// StopError marks a service exit caused by coordinated shutdown rather than
// failure. Services that want their cancellation exit to carry extra detail
// can wrap it:
//
//	return &supervisor.StopError{Err: srv.drain()}
//
// The supervisor treats StopError exits as clean stops and does not escalate
// them, so they never mask the failure that triggered cancellation.
type StopError struct {
	Err error
}

func (e *StopError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service stopped: %v", e.Err)
	}
	return "service stopped"
}

func (e *StopError) Unwrap() error {
	return e.Err
}

// IsCancellation reports whether err represents a cancellation-derived stop:
// either an explicit StopError or a context cancellation propagated through
// any number of wrapping layers. Such errors are clean stops, not failures.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	var stop *StopError
	if errors.As(err, &stop) {
		return true
	}
	return errors.Is(err, context.Canceled)
}
