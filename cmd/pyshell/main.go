// Package main provides the pyshell CLI entry point.
//
// pyshell is the native shell of a desktop application. It starts the
// bundled Python backend in the background, shows its window, and kills the
// backend when the window closes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/randomizedcoder/pyshell/internal/config"
	"github.com/randomizedcoder/pyshell/internal/logging"
	"github.com/randomizedcoder/pyshell/internal/metrics"
	"github.com/randomizedcoder/pyshell/internal/preflight"
	"github.com/randomizedcoder/pyshell/internal/process"
	"github.com/randomizedcoder/pyshell/internal/resource"
	"github.com/randomizedcoder/pyshell/internal/shell"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/pyshell
var version = "dev"

const statusTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Handle version flag early (before flag parsing)
	if len(args) > 0 {
		switch args[0] {
		case "-version", "--version", "version":
			fmt.Fprintf(stdout, "pyshell %s\n", version)
			return 0
		case "status":
			return runStatus(args[1:], stdout, stderr)
		}
	}

	// Parse command-line flags
	cfg, err := config.ParseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	// When the window is up, logs would corrupt it; they go to -log-file or nowhere
	logger, closer, err := logging.Open(logging.Options{
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
		Quiet:   cfg.TUIEnabled && shell.Terminal(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error opening log: %v\n", err)
		return 1
	}
	defer closer.Close()
	logging.SetDefault(logger)

	// Handle -print-cmd mode
	if cfg.PrintCmd {
		printCommand(stdout, cfg)
		return 0
	}

	// Handle -check mode
	if cfg.Check {
		return runCheck(stdout, cfg)
	}

	logger.Info("starting",
		"version", version,
		"interpreter", cfg.EffectiveInterpreter(),
		"script", cfg.ScriptPath,
		"tui", cfg.TUIEnabled,
		"metrics_addr", cfg.MetricsAddr,
	)

	sh := shell.New(cfg, logger, shell.WithVersion(version))
	if err := sh.Run(context.Background()); err != nil {
		logger.Error("shell_failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// resolveScript returns the script the shell would launch.
func resolveScript(cfg *config.Config) (string, string) {
	resolver := resource.NewResolver(cfg.ResourceDir)
	script, _ := resolver.ResolveOrFallback(cfg.ScriptPath, cfg.FallbackScript)
	return script, resolver.Root
}

// printCommand prints the backend command that would be run.
func printCommand(w io.Writer, cfg *config.Config) {
	script, _ := resolveScript(cfg)
	cmd := process.Command{Interpreter: cfg.EffectiveInterpreter(), Script: script}

	fmt.Fprintln(w, "# Backend command that would be run:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, cmd.String())
}

// runCheck runs the preflight checks. Only a missing interpreter fails.
func runCheck(w io.Writer, cfg *config.Config) int {
	script, root := resolveScript(cfg)

	result := preflight.RunAll(preflight.Input{
		Interpreter:  cfg.EffectiveInterpreter(),
		Script:       script,
		ResourceRoot: root,
	})
	preflight.PrintResults(w, result)

	if !result.Passed {
		return 1
	}
	return 0
}

// runStatus prints the backend status of a running shell.
func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pyshell status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("metrics", statusAddr(), "Metrics address of the running shell (host:port or URL)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	st, err := metrics.FetchStatus(ctx, &http.Client{Timeout: statusTimeout}, *addr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Is pyshell running with -metrics %s?\n", *addr)
		return 1
	}

	printStatus(stdout, st)
	return 0
}

// statusAddr is the default for "status -metrics": PYSHELL_METRICS_ADDR, the
// same variable that enables the endpoint, else config.DefaultMetricsAddr.
func statusAddr() string {
	if env, err := config.LoadEnv(); err == nil && env.MetricsAddr != "" {
		return env.MetricsAddr
	}
	return config.DefaultMetricsAddr
}

func printStatus(w io.Writer, st *metrics.BackendStatus) {
	fmt.Fprintf(w, "Shell:        pyshell %s\n", orDash(st.Version))
	fmt.Fprintf(w, "Interpreter:  %s\n", orDash(st.Interpreter))
	fmt.Fprintf(w, "Script:       %s\n", orDash(st.Script))
	fmt.Fprintf(w, "State:        %s\n", orDash(st.State))
	if st.Up {
		fmt.Fprintf(w, "PID:          %d\n", st.PID)
		if !st.StartedAt.IsZero() {
			fmt.Fprintf(w, "Started:      %s\n", st.StartedAt.Format(time.RFC3339))
		}
	}
	for _, kind := range slices.Sorted(maps.Keys(st.Failures)) {
		if n := st.Failures[kind]; n > 0 {
			fmt.Fprintf(w, "Failures:     %s=%d\n", kind, n)
		}
	}
	fmt.Fprintf(w, "Exits:        %d\n", st.Exits)
	fmt.Fprintf(w, "Terminations: %d\n", st.Terminations)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
