// Package process provides abstractions for running the backend process.
package process

import (
	"strconv"
	"strings"
)

// Spawner starts OS processes.
// This interface allows the supervisor to be process-agnostic.
type Spawner interface {
	// Spawn starts name with args and returns as soon as the process exists.
	// It never waits for the process to finish.
	Spawn(name string, args ...string) (Process, error)
}

// Process is a started OS process.
type Process interface {
	Pid() int

	// Kill issues an immediate forced termination. It does not wait.
	Kill() error
}

// Command describes a backend invocation: <interpreter> <script>.
type Command struct {
	Interpreter string
	Script      string
}

// Args returns the arguments passed to the interpreter.
func (c Command) Args() []string {
	return []string{c.Script}
}

// String returns the command as a shell-quoted line, for display only.
func (c Command) String() string {
	parts := make([]string, 0, 2)
	for _, p := range append([]string{c.Interpreter}, c.Args()...) {
		parts = append(parts, quoteArg(p))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\n\"'\\$`") {
		return strconv.Quote(s)
	}
	return s
}
