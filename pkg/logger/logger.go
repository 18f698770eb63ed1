// nolint: sloglint
package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	lvl = new(slog.LevelVar)

	// logs go to stderr so command output on stdout stays machine readable
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceLevelAttr,
	}))
)

func init() {
	slog.SetDefault(logger)
}

// Config is the logger configuration.
type Config struct {
	// Output is the log format, `text` (default) or `json`.
	Output string `mapstructure:"output"`

	// Level is the minimum reporting level, E.g. `debug`, `info` (default), `warn` or `error`.
	Level string `mapstructure:"level"`

	// Debug lowers the level to debug and adds the source location and stack traces of logged errors.
	Debug bool `mapstructure:"debug"`
}

// Init replaces the global logger and the slog default logger.
func Init(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return errors.WithStack(err)
	}

	options := &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceLevelAttr,
	}
	var middlewares []middleware
	if cfg.Debug {
		level = slog.LevelDebug
		options.AddSource = true
		middlewares = append(middlewares, middlewareError())
	}
	lvl.Set(level)

	var handler slog.Handler
	switch strings.ToLower(cfg.Output) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, options)
	case "", "text":
		handler = slog.NewTextHandler(os.Stderr, options)
	default:
		return errors.Errorf("unknown log output %q", cfg.Output)
	}

	logger = slog.New(newHandler(handler, middlewares...))
	slog.SetDefault(logger)
	return nil
}

// With returns the global logger with the given attributes.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

func Debug(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelInfo, msg, args...)
}

// Panic logs at LevelPanic and then panics.
func Panic(msg string, args ...any) {
	log(context.Background(), logger, LevelPanic, msg, args...)
	panic(msg)
}

// LogAttrs logs the attributes with the logger of the context.
func LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, FromContext(ctx), level, msg, attrs...)
}

// log must be called directly by an exported function to report the right source.
func log(ctx context.Context, l *slog.Logger, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}
	r := newRecord(level, msg)
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

func logAttrs(ctx context.Context, l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}
	r := newRecord(level, msg)
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}

func newRecord(level slog.Level, msg string) slog.Record {
	var pcs [1]uintptr
	// skip [runtime.Callers, newRecord, log, exported function]
	runtime.Callers(4, pcs[:])
	return slog.NewRecord(time.Now(), level, msg, pcs[0])
}
