// Package logging builds the CLI's zap logger. Diagnostics go to stderr
// at error level by default; --verbose lowers the level to debug and
// additionally mirrors everything to a session log file under the
// credential directory, so a failed run can be inspected afterwards.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Verbose lowers the level to debug and enables the file mirror.
	Verbose bool

	// Dir is where the debug log file is written. Empty disables the
	// file mirror even in verbose mode.
	Dir string
}

const logFileName = "pine.log"

// New builds the process logger. The returned close function flushes and
// releases the debug file, if one was opened.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.ErrorLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			level,
		),
	}

	closeFn := func() {}
	if opts.Verbose && opts.Dir != "" {
		file, err := openLogFile(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.Lock(file),
			zapcore.DebugLevel,
		))
		closeFn = func() { _ = file.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, closeFn, nil
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
