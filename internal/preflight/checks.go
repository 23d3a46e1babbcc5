// Package preflight provides startup diagnostics.
package preflight

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/randomizedcoder/pyshell/internal/process"
	"github.com/randomizedcoder/pyshell/internal/resource"
)

// probeTimeout bounds the interpreter version probe.
const probeTimeout = 5 * time.Second

// Seams for tests.
var (
	lookupInterpreter = process.LookupInterpreter
	probeVersion      = process.ProbeVersion
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// Input describes what the shell is about to launch.
type Input struct {
	Interpreter  string
	Script       string
	ResourceRoot string
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks. Only the interpreter check can fail
// the result; the others are warnings because the shell starts regardless.
func RunAll(in Input) *Result {
	result := &Result{
		Checks: make([]Check, 0, 3),
		Passed: true,
	}

	interpCheck := checkInterpreter(in.Interpreter)
	result.Checks = append(result.Checks, interpCheck)
	if !interpCheck.Passed {
		result.Passed = false
	}

	result.Checks = append(result.Checks, checkScript(in.Script))
	result.Checks = append(result.Checks, checkResourceRoot(in.ResourceRoot))

	return result
}

// checkInterpreter verifies the interpreter resolves and reports its version.
func checkInterpreter(name string) Check {
	path, err := lookupInterpreter(name)
	if err != nil {
		return Check{
			Name:    "interpreter",
			Passed:  false,
			Message: fmt.Sprintf("%q not found on PATH", name),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	version, err := probeVersion(ctx, path)
	if err != nil {
		return Check{
			Name:    "interpreter",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("found at %s (version probe failed: %v)", path, err),
		}
	}

	return Check{
		Name:    "interpreter",
		Passed:  true,
		Message: fmt.Sprintf("found at %s (%s)", path, version),
	}
}

// checkScript verifies the backend script exists.
func checkScript(path string) Check {
	if path == "" {
		return Check{
			Name:    "script",
			Passed:  true,
			Warning: true,
			Message: "no script path",
		}
	}
	if !resource.Exists(path) {
		return Check{
			Name:    "script",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("%s does not exist", path),
		}
	}
	return Check{
		Name:    "script",
		Passed:  true,
		Message: path,
	}
}

// checkResourceRoot verifies the resource directory exists.
func checkResourceRoot(root string) Check {
	if root == "" {
		return Check{
			Name:    "resource_root",
			Passed:  true,
			Warning: true,
			Message: "could not be determined",
		}
	}
	if !resource.DirExists(root) {
		return Check{
			Name:    "resource_root",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("%s is not a directory", root),
		}
	}
	return Check{
		Name:    "resource_root",
		Passed:  true,
		Message: root,
	}
}

// PrintResults prints the preflight check results to w.
func PrintResults(w io.Writer, result *Result) {
	fmt.Fprintln(w, "Preflight checks:")
	for _, check := range result.Checks {
		fmt.Fprintln(w, check.String())
		if !check.Passed || check.Warning {
			fmt.Fprintf(w, "    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Fprintln(w)
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "interpreter":
		return "install Python 3 (apt install python3 / brew install python) or set PYTHON_PATH"
	case "script":
		return "check -script and -fallback-script, or reinstall the application resources"
	case "resource_root":
		return "set -resource-dir or PYSHELL_RESOURCE_DIR"
	default:
		return "see documentation"
	}
}
