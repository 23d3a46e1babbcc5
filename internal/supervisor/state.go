// Package supervisor owns the spawn/kill lifecycle of the backend process.
package supervisor

// State represents the lifecycle state of the backend.
type State int

const (
	// StateNotStarted is the initial state before the launch sequence ran.
	StateNotStarted State = iota

	// StateRunning indicates the backend process was spawned and is tracked.
	StateRunning

	// StateFailedToStart indicates the launch sequence failed. No retry.
	StateFailedToStart

	// StateExited indicates the tracked process exited on its own.
	// The supervisor does not restart it.
	StateExited

	// StateTerminated indicates the shell killed the backend on exit.
	StateTerminated
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateFailedToStart:
		return "failed_to_start"
	case StateExited:
		return "exited"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// States lists every state, in declaration order.
func States() []State {
	return []State{StateNotStarted, StateRunning, StateFailedToStart, StateExited, StateTerminated}
}
