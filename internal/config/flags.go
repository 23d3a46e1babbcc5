package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseFlags parses command-line flags and returns a Config.
// Environment variables are applied first so that explicit flags win.
func ParseFlags(args []string) (*Config, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return parseFlags(args, env, os.Stderr)
}

func parseFlags(args []string, env Env, out io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	ApplyEnv(cfg, env)

	fs := flag.NewFlagSet("pyshell", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.Usage = func() {
		fmt.Fprintf(out, `pyshell - desktop shell that launches the Python backend

Usage:
  pyshell [flags]
  pyshell status [-metrics addr]

Backend Flags:
`)
		printFlagCategory(fs, out, []string{"python", "resource-dir", "script", "fallback-script"})

		fmt.Fprintf(out, "\nPresentation:\n")
		printFlagCategory(fs, out, []string{"tui", "dialog"})

		fmt.Fprintf(out, "\nObservability:\n")
		printFlagCategory(fs, out, []string{"metrics", "v", "log-format", "log-level", "log-file"})

		fmt.Fprintf(out, "\nDiagnostics:\n")
		printFlagCategory(fs, out, []string{"print-cmd", "check"})

		fmt.Fprintf(out, `
Environment:
  PYTHON_PATH           Interpreter to run instead of -python
  PYSHELL_RESOURCE_DIR  Same as -resource-dir
  PYSHELL_LOG_FORMAT    Same as -log-format
  PYSHELL_LOG_LEVEL     Same as -log-level
  PYSHELL_METRICS_ADDR  Same as -metrics

`)
	}

	// Backend
	fs.StringVar(&cfg.Interpreter, "python", cfg.Interpreter, "Interpreter command used when PYTHON_PATH is unset")
	fs.StringVar(&cfg.ResourceDir, "resource-dir", cfg.ResourceDir, "Bundled resource root (default: <executable dir>/resources)")
	fs.StringVar(&cfg.ScriptPath, "script", cfg.ScriptPath, "Backend entry script, relative to the resource root")
	fs.StringVar(&cfg.FallbackScript, "fallback-script", cfg.FallbackScript, "Script path used when resource resolution fails")

	// Presentation
	fs.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Show the shell window (use -tui=false for headless)")
	fs.StringVar(&cfg.Dialog, "dialog", cfg.Dialog, `Failure dialogs: "auto", "tui", "notify", "log"`)

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled; pyshell status reads "+DefaultMetricsAddr+" by default)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, `Log level: "debug", "info", "warn", "error"`)
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file (required to see logs while the window is shown)")

	// Diagnostics
	fs.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the backend command and exit")
	fs.BoolVar(&cfg.Check, "check", cfg.Check, "Run preflight checks and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, out io.Writer, names []string) {
	fs.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(out, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
					fmt.Fprintf(out, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(out)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	if _, ok := f.Value.(interface{ IsBoolFlag() bool }); ok {
		return ""
	}
	return "string"
}
