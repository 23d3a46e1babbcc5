// Package config provides configuration management for pyshell.
package config

// Default resource locations for the backend entry script.
const (
	DefaultScriptPath     = "server/main.py"
	DefaultFallbackScript = "../server/main.py"
	DefaultInterpreter    = "python"
)

// DefaultMetricsAddr is where "pyshell status" looks for a running shell when
// neither -metrics nor PYSHELL_METRICS_ADDR names one. The shell itself only
// listens when -metrics is set.
const DefaultMetricsAddr = "127.0.0.1:17091"

// Config holds all configuration options for the shell.
type Config struct {
	// Backend
	Interpreter         string `json:"interpreter"`          // default command name
	InterpreterOverride string `json:"interpreter_override"` // PYTHON_PATH
	ResourceDir         string `json:"resource_dir"`         // "" = next to the executable
	ScriptPath          string `json:"script_path"`          // relative to ResourceDir
	FallbackScript      string `json:"fallback_script"`

	// Presentation
	TUIEnabled bool   `json:"tui_enabled"`
	Dialog     string `json:"dialog"` // auto, tui, notify, log

	// Observability
	MetricsAddr string `json:"metrics_addr"` // "" = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	LogLevel    string `json:"log_level"`
	LogFile     string `json:"log_file"`

	// Diagnostic modes
	PrintCmd bool `json:"print_cmd"`
	Check    bool `json:"check"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interpreter:    DefaultInterpreter,
		ScriptPath:     DefaultScriptPath,
		FallbackScript: DefaultFallbackScript,

		TUIEnabled: true,
		Dialog:     "auto",

		LogFormat: "json",
		LogLevel:  "info",
	}
}

// EffectiveInterpreter returns the override when set, otherwise the default
// command name.
func (c *Config) EffectiveInterpreter() string {
	if c.InterpreterOverride != "" {
		return c.InterpreterOverride
	}
	return c.Interpreter
}
