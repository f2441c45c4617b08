// Package logging builds the zap logger used for run diagnostics.
package logging

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is used when Options.Level is empty.
const DefaultLevel = "info"

// Options configures New.
type Options struct {
	// Level is a zap level name such as "debug" or "warn".
	Level string
	// File receives JSON diagnostics instead of stderr when set.
	File string
	// Fs is where File is created. Defaults to the OS filesystem.
	Fs afero.Fs
}

// New returns a logger and a function that flushes and releases it.
// Without a file, a console logger writes to stderr.
func New(opts Options) (*zap.Logger, func() error, error) {
	name := opts.Level
	if name == "" {
		name = DefaultLevel
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	if opts.File == "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.DisableStacktrace = true
		logger, err := cfg.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("building logger: %w", err)
		}
		return logger, func() error { return syncErr(logger.Sync()) }, nil
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	cfg := zap.NewProductionConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(f), level)
	logger := zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr)))

	closeFn := func() error {
		syncErr := logger.Sync()
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
		return syncErr
	}
	return logger, closeFn, nil
}

// syncErr ignores the error returned when stderr is a terminal or pipe,
// which cannot be synced.
func syncErr(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) && pe.Op == "sync" {
		return nil
	}
	return err
}
