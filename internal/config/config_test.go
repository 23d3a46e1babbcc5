package config

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Interpreter != "python" {
		t.Errorf("Interpreter = %q, want %q", cfg.Interpreter, "python")
	}
	if cfg.ScriptPath != "server/main.py" {
		t.Errorf("ScriptPath = %q, want %q", cfg.ScriptPath, "server/main.py")
	}
	if cfg.FallbackScript != "../server/main.py" {
		t.Errorf("FallbackScript = %q, want %q", cfg.FallbackScript, "../server/main.py")
	}
	if !cfg.TUIEnabled {
		t.Error("TUIEnabled should default to true")
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want disabled", cfg.MetricsAddr)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEffectiveInterpreter(t *testing.T) {
	testCases := []struct {
		name     string
		def      string
		override string
		expected string
	}{
		{"no override", "python", "", "python"},
		{"override", "python", "/opt/py/bin/python3", "/opt/py/bin/python3"},
		{"custom default", "python3", "", "python3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Interpreter: tc.def, InterpreterOverride: tc.override}
			if got := cfg.EffectiveInterpreter(); got != tc.expected {
				t.Errorf("EffectiveInterpreter() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	ApplyEnv(cfg, Env{
		PythonPath:  "/usr/bin/python3",
		ResourceDir: "/opt/app/resources",
		LogFormat:   "text",
		LogLevel:    "debug",
		MetricsAddr: "127.0.0.1:9000",
	})

	if cfg.InterpreterOverride != "/usr/bin/python3" {
		t.Errorf("InterpreterOverride = %q", cfg.InterpreterOverride)
	}
	if cfg.ResourceDir != "/opt/app/resources" {
		t.Errorf("ResourceDir = %q", cfg.ResourceDir)
	}
	if cfg.LogFormat != "text" || cfg.LogLevel != "debug" {
		t.Errorf("log settings = %q/%q", cfg.LogFormat, cfg.LogLevel)
	}
	if cfg.MetricsAddr != "127.0.0.1:9000" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}

func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	cfg := DefaultConfig()
	ApplyEnv(cfg, Env{})

	if cfg.InterpreterOverride != "" {
		t.Errorf("empty PYTHON_PATH should leave override unset, got %q", cfg.InterpreterOverride)
	}
	if cfg.EffectiveInterpreter() != "python" {
		t.Errorf("EffectiveInterpreter() = %q, want python", cfg.EffectiveInterpreter())
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PYTHON_PATH", "/nonexistent/bin")
	t.Setenv("PYSHELL_RESOURCE_DIR", "/tmp/res")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}
	if env.PythonPath != "/nonexistent/bin" {
		t.Errorf("PythonPath = %q", env.PythonPath)
	}
	if env.ResourceDir != "/tmp/res" {
		t.Errorf("ResourceDir = %q", env.ResourceDir)
	}
}

func TestParseFlags_Precedence(t *testing.T) {
	env := Env{LogFormat: "text", MetricsAddr: "127.0.0.1:9000"}

	// Environment beats defaults
	cfg, err := parseFlags(nil, env, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() error: %v", err)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want env value", cfg.LogFormat)
	}

	// Explicit flags beat environment
	cfg, err = parseFlags([]string{"-log-format", "json", "-metrics", "127.0.0.1:9100"}, env, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() error: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want flag value", cfg.LogFormat)
	}
	if cfg.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("MetricsAddr = %q, want flag value", cfg.MetricsAddr)
	}
}

func TestParseFlags_AllFlags(t *testing.T) {
	args := []string{
		"-python", "python3",
		"-resource-dir", "/opt/app",
		"-script", "backend/app.py",
		"-fallback-script", "./app.py",
		"-tui=false",
		"-dialog", "log",
		"-v",
		"-log-file", "/tmp/shell.log",
		"-print-cmd",
		"-check",
	}

	cfg, err := parseFlags(args, Env{PythonPath: "/usr/bin/python3.12"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags() error: %v", err)
	}

	if cfg.Interpreter != "python3" {
		t.Errorf("Interpreter = %q", cfg.Interpreter)
	}
	if cfg.EffectiveInterpreter() != "/usr/bin/python3.12" {
		t.Errorf("PYTHON_PATH should still override -python, got %q", cfg.EffectiveInterpreter())
	}
	if cfg.ResourceDir != "/opt/app" || cfg.ScriptPath != "backend/app.py" || cfg.FallbackScript != "./app.py" {
		t.Errorf("script settings = %q %q %q", cfg.ResourceDir, cfg.ScriptPath, cfg.FallbackScript)
	}
	if cfg.TUIEnabled {
		t.Error("TUIEnabled should be false")
	}
	if cfg.Dialog != "log" || !cfg.Verbose || cfg.LogFile != "/tmp/shell.log" {
		t.Errorf("presentation settings = %q %v %q", cfg.Dialog, cfg.Verbose, cfg.LogFile)
	}
	if !cfg.PrintCmd || !cfg.Check {
		t.Error("diagnostic flags should be set")
	}
}

func TestParseFlags_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"positional argument", []string{"extra"}},
		{"bad bool", []string{"-tui=maybe"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseFlags(tc.args, Env{}, io.Discard); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFlags_Usage(t *testing.T) {
	var sb strings.Builder
	_, err := parseFlags([]string{"-h"}, Env{}, &sb)
	if err == nil {
		t.Fatal("expected flag.ErrHelp")
	}

	usage := sb.String()
	for _, want := range []string{"PYTHON_PATH", "-python", "-dialog", "-metrics"} {
		if !strings.Contains(usage, want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty interpreter", func(c *Config) { c.Interpreter = " " }, "interpreter"},
		{"empty script", func(c *Config) { c.ScriptPath = "" }, "script_path"},
		{"absolute script", func(c *Config) { c.ScriptPath = "/srv/main.py" }, "script_path"},
		{"empty fallback", func(c *Config) { c.FallbackScript = "" }, "fallback_script"},
		{"bad dialog", func(c *Config) { c.Dialog = "popup" }, "dialog"},
		{"tui dialog without window", func(c *Config) { c.Dialog = "tui"; c.TUIEnabled = false }, "dialog"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad metrics addr", func(c *Config) { c.MetricsAddr = "localhost" }, "metrics_addr"},
		{"good metrics addr", func(c *Config) { c.MetricsAddr = "127.0.0.1:17091" }, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(cfg)

			err := Validate(cfg)
			if tc.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for field %q", tc.wantField)
			}

			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error is not a ValidationError: %v", err)
			}
			if ve.Field != tc.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tc.wantField)
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dialog = "popup"
	cfg.LogFormat = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "dialog") || !strings.Contains(msg, "log_format") {
		t.Errorf("joined error should mention both fields: %s", msg)
	}
}
