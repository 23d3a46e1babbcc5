package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Interpreter) == "" {
		errs = append(errs, ValidationError{
			Field:   "interpreter",
			Message: "must not be empty",
		})
	}

	// The script is resolved under the resource root; it cannot be absolute
	if cfg.ScriptPath == "" {
		errs = append(errs, ValidationError{
			Field:   "script_path",
			Message: "must not be empty",
		})
	} else if filepath.IsAbs(cfg.ScriptPath) {
		errs = append(errs, ValidationError{
			Field:   "script_path",
			Message: fmt.Sprintf("must be relative to the resource root (got %q)", cfg.ScriptPath),
		})
	}

	if cfg.FallbackScript == "" {
		errs = append(errs, ValidationError{
			Field:   "fallback_script",
			Message: "must not be empty",
		})
	}

	validDialogs := map[string]bool{"auto": true, "tui": true, "notify": true, "log": true}
	if !validDialogs[cfg.Dialog] {
		errs = append(errs, ValidationError{
			Field:   "dialog",
			Message: fmt.Sprintf("must be one of: auto, tui, notify, log (got %q)", cfg.Dialog),
		})
	}

	// A window modal needs a window
	if cfg.Dialog == "tui" && !cfg.TUIEnabled {
		errs = append(errs, ValidationError{
			Field:   "dialog",
			Message: `"tui" requires the window (-tui)`,
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.LogLevel),
		})
	}

	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			errs = append(errs, ValidationError{
				Field:   "metrics_addr",
				Message: fmt.Sprintf("must be host:port (%v)", err),
			})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
