// Package config handles application configuration and setup
package config

import (
	"github.com/moseschmiedel/masm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger for the given behavior flags. Debug logging
// takes precedence over quiet mode, quiet mode only outputs errors.
func CreateLogger(flags options.Flags) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case flags.Debug:
		cfg.Level = log.DebugLevel
	case flags.Quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
