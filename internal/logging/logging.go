// Package logging builds the zap logger used by the md2html CLI.
//
// Console output is human-readable and goes to stderr (or any writer).
// An optional log file receives JSON entries at debug level regardless of
// the console level, so a quiet run can still be diagnosed afterwards.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Console levels.
const (
	LevelDebug = "debug"
	LevelWarn  = "warn"
	LevelError = "error"
)

// AppName names the root logger.
const AppName = "md2html"

// ErrInvalidLevel is returned for an unknown console level.
var ErrInvalidLevel = errors.New("invalid log level")

// Options configures New.
type Options struct {
	Level   string    // debug, warn (default) or error
	Console io.Writer // default os.Stderr; io.Discard silences the console
	File    string    // optional JSON log file, appended to
}

// New returns the logger and a close function flushing and closing the log
// file. The close function is never nil.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	cores := []zapcore.Core{consoleCore(console, level)}
	closeFn := func() error { return nil }

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- user-provided log path
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", opts.File, err)
		}
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.Lock(f), zapcore.DebugLevel))
		closeFn = func() error {
			syncErr := f.Sync()
			if err := f.Close(); err != nil {
				return err
			}
			return syncErr
		}
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named(AppName)
	return logger, closeFn, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "", LevelWarn:
		return zapcore.WarnLevel, nil
	case LevelDebug:
		return zapcore.DebugLevel, nil
	case LevelError:
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be %s, %s or %s)", ErrInvalidLevel, s, LevelDebug, LevelWarn, LevelError)
	}
}

func consoleCore(w io.Writer, level zapcore.Level) zapcore.Core {
	if w == io.Discard {
		return zapcore.NewNopCore()
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewCore(consoleEncoder{zapcore.NewConsoleEncoder(ec)}, zapcore.AddSync(w), level)
}

// consoleEncoder prints errors by message only; wrapped errors otherwise add
// an errorVerbose field that repeats the chain.
type consoleEncoder struct {
	zapcore.Encoder
}

func (c consoleEncoder) Clone() zapcore.Encoder {
	return consoleEncoder{c.Encoder.Clone()}
}

func (c consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
