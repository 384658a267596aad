// Package logging builds the process logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
	ModeSilent      = "silent"
)

// New returns a JSON logger for production mode, a console logger for
// development mode and a no-op logger for silent mode. An empty level
// keeps the mode's default (info for production, debug for development).
func New(mode, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "prod", ModeProduction:
		cfg = zap.NewProductionConfig()
	case "dev", ModeDevelopment:
		cfg = zap.NewDevelopmentConfig()
	case ModeSilent, "off", "none":
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// ValidMode reports whether New accepts mode.
func ValidMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "prod", ModeProduction, "dev", ModeDevelopment, ModeSilent, "off", "none":
		return true
	}
	return false
}
