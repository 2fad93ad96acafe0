package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New builds a zap logger at the given level writing to the given
// paths. The console passes a file path here because the terminal is
// owned by the TUI renderer; the simulator passes "stdout".
func New(level string, outputPaths ...string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(level, "debug") {
		cfg = zap.NewDevelopmentConfig()
	}
	if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	if len(outputPaths) > 0 {
		cfg.OutputPaths = outputPaths
		cfg.ErrorOutputPaths = outputPaths
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return log, nil
}
