package supervisor

import "sync/atomic"

// State describes where the supervisor is in its lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// stateVar is an atomic lifecycle state holder. Transitions are CAS-based so
// a late transition (e.g. running → shutting-down racing with → stopped)
// never regresses the state.
type stateVar struct {
	v atomic.Int32
}

func (s *stateVar) get() State {
	return State(s.v.Load())
}

func (s *stateVar) set(to State) {
	s.v.Store(int32(to))
}

// transition moves from → to and reports whether it applied.
func (s *stateVar) transition(from, to State) bool {
	return s.v.CompareAndSwap(int32(from), int32(to))
}
