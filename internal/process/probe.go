package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when an interpreter cannot be found on PATH.
var ErrNotFound = errors.New("interpreter not found")

// Interpreter returns override when it is non-empty, otherwise def.
func Interpreter(override, def string) string {
	if override != "" {
		return override
	}
	return def
}

// LookupInterpreter resolves name through the executable search path.
// Names containing a path separator are checked directly.
func LookupInterpreter(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	return path, nil
}

// ProbeVersion runs "<path> --version" and returns the trimmed first line.
// Python 2 prints its version on stderr, so both streams are read.
func ProbeVersion(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("version probe failed: %w", err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "unknown", nil
	}
	return line, nil
}
