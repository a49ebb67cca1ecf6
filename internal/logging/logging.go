// Package logging builds the zap logger used across the viewer.
//
// The terminal is owned by the screen, so logs only ever go to a file.
// With no file configured every logger is a no-op.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to path, or a no-op logger when path is
// empty. The returned func flushes buffered entries; call it on exit.
func New(path string, debug bool) (*zap.Logger, func(), error) {
	if path == "" {
		return zap.NewNop(), func() {}, nil
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	sync := func() { _ = logger.Sync() }
	return logger, sync, nil
}
