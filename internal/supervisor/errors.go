package supervisor

import (
	"errors"
	"fmt"
)

// FailureKind classifies launch failures.
type FailureKind int

const (
	// FailureInterpreterNotFound means the interpreter is not on PATH.
	// Nothing was spawned.
	FailureInterpreterNotFound FailureKind = iota + 1

	// FailureSpawnFailed means the OS refused to start the process.
	FailureSpawnFailed
)

func (k FailureKind) String() string {
	switch k {
	case FailureInterpreterNotFound:
		return "interpreter_not_found"
	case FailureSpawnFailed:
		return "spawn_failed"
	default:
		return "unknown"
	}
}

var (
	ErrInterpreterNotFound = errors.New("interpreter not found")
	ErrSpawnFailed         = errors.New("spawn failed")
)

// LaunchError describes why the backend could not be started.
type LaunchError struct {
	Kind        FailureKind
	Interpreter string
	Script      string
	Err         error
}

func (e *LaunchError) Error() string {
	switch e.Kind {
	case FailureInterpreterNotFound:
		return fmt.Sprintf("interpreter %q not found on PATH", e.Interpreter)
	default:
		return fmt.Sprintf("failed to start %s %s: %v", e.Interpreter, e.Script, e.Err)
	}
}

// Unwrap exposes both the sentinel for the kind and the underlying error.
func (e *LaunchError) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch e.Kind {
	case FailureInterpreterNotFound:
		errs = append(errs, ErrInterpreterNotFound)
	case FailureSpawnFailed:
		errs = append(errs, ErrSpawnFailed)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
