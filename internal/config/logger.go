package config

import (
	"fmt"
	"strings"

	"github.com/HerbHall/notebookrelay/internal/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Level is one of debug, info, warn or
// error (default info); Format is json or console (default json). Every entry
// carries the relay version.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level := strings.ToLower(strings.TrimSpace(cfg.Level))
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "json", "":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", cfg.Format)
	}

	zc.Level = zap.NewAtomicLevelAt(zapLevel)
	zc.InitialFields = map[string]any{"version": version.Short()}

	return zc.Build()
}
