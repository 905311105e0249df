// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "EDGECAM_LOG_LEVEL"

// New returns a JSON production logger, or a console development logger when
// development is set. The level comes from EDGECAM_LOG_LEVEL if present, else
// from level.
func New(level string, development bool) (*zap.Logger, error) {
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		level = env
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}
