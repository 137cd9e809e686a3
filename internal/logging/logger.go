// Package logging builds the program's zap logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/thermoparam/internal/model"
)

// AppName names the root logger
const AppName = "thermoparam"

// New returns the configured logger and a function releasing its resources.
// Console output goes to stderr so that stdout stays usable for results.
func New(cfg model.LoggingConfig, verbose bool) (*zap.Logger, func() error, error) {
	return newLogger(cfg, verbose, os.Stderr)
}

func newLogger(cfg model.LoggingConfig, verbose bool, console io.Writer) (*zap.Logger, func() error, error) {
	level := cfg.Level
	if verbose && level != "none" {
		level = "debug"
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if color.NoColor {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}

	var consoleCore zapcore.Core
	switch level {
	case "normal":
		consoleCore = zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.AddSync(console), zap.InfoLevel)
	case "debug":
		consoleCore = zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.AddSync(console), zap.DebugLevel)
	case "none", "":
		consoleCore = zapcore.NewNopCore()
	default:
		return nil, nil, fmt.Errorf("unknown console log level %q (expected none, normal or debug)", level)
	}

	closers := []io.Closer{}
	fileCore := zapcore.NewNopCore()
	if cfg.File != "" {
		var fileLevel zapcore.Level
		switch cfg.FileLevel {
		case "debug":
			fileLevel = zap.DebugLevel
		case "normal", "":
			fileLevel = zap.InfoLevel
		case "none":
			fileLevel = zapcore.InvalidLevel
		default:
			return nil, nil, fmt.Errorf("unknown file log level %q (expected none, normal or debug)", cfg.FileLevel)
		}

		if fileLevel != zapcore.InvalidLevel {
			flags := os.O_CREATE | os.O_WRONLY
			if cfg.FileMode == "append" {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := os.OpenFile(cfg.File, flags, 0644)
			if err != nil {
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			closers = append(closers, f)
			fileCore = zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), fileLevel)
		}
	}

	logger := zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller()).Named(AppName)

	release := func() (err error) {
		// stderr sync fails on some platforms, ignore it
		_ = logger.Sync()
		for _, c := range closers {
			err = multierr.Append(err, c.Close())
		}
		return err
	}
	return logger, release, nil
}
