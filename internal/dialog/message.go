// Package dialog turns backend launch failures into user-facing dialogs.
package dialog

import (
	"errors"
	"fmt"

	"github.com/randomizedcoder/pyshell/internal/supervisor"
)

// Severity marks how a dialog is styled.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the content of one dialog.
type Message struct {
	Title    string
	Body     string
	Severity Severity
}

// FromError builds the dialog for a launch failure. It reports false for
// errors that are not a *supervisor.LaunchError.
func FromError(err error) (Message, bool) {
	var lerr *supervisor.LaunchError
	if !errors.As(err, &lerr) {
		return Message{}, false
	}

	switch lerr.Kind {
	case supervisor.FailureInterpreterNotFound:
		return Message{
			Title: "Python not found",
			Body: fmt.Sprintf(
				"The backend needs the Python interpreter %q, which was not found on PATH.\n\n"+
					"Install Python 3, or set the PYTHON_PATH environment variable to the interpreter to use, then restart the application.",
				lerr.Interpreter,
			),
			Severity: SeverityError,
		}, true
	default:
		return Message{
			Title:    "Backend failed to start",
			Body:     fmt.Sprintf("The backend process could not be started:\n\n%v", lerr.Err),
			Severity: SeverityError,
		}, true
	}
}
