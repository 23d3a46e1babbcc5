package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds the environment variables the shell understands.
type Env struct {
	PythonPath  string `envconfig:"PYTHON_PATH"`
	ResourceDir string `envconfig:"PYSHELL_RESOURCE_DIR"`
	LogFormat   string `envconfig:"PYSHELL_LOG_FORMAT"`
	LogLevel    string `envconfig:"PYSHELL_LOG_LEVEL"`
	MetricsAddr string `envconfig:"PYSHELL_METRICS_ADDR"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("failed to load environment: %w", err)
	}
	return env, nil
}

// ApplyEnv copies non-empty environment values onto cfg.
// An empty PYTHON_PATH is the same as an unset one.
func ApplyEnv(cfg *Config, env Env) {
	if env.PythonPath != "" {
		cfg.InterpreterOverride = env.PythonPath
	}
	if env.ResourceDir != "" {
		cfg.ResourceDir = env.ResourceDir
	}
	if env.LogFormat != "" {
		cfg.LogFormat = env.LogFormat
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.MetricsAddr != "" {
		cfg.MetricsAddr = env.MetricsAddr
	}
}
