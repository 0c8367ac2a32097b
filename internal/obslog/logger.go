// Package obslog provides structured logging for the orchestration engine.
// It exposes a small Field-based Logger interface backed by
// github.com/rs/zerolog, the way joeycumines/go-utilpkg/logiface-zerolog
// backs the logiface facade with the same library.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
)

// Field represents a single structured logging key/value pair.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field     { return Field{Key: key, Value: value} }
func Int(key string, value int) Field    { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Float(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field  { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is the structured logging interface every component depends on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// zerologLogger adapts zerolog.Logger to the Logger interface.
type zerologLogger struct {
	z zerolog.Logger
}

// New creates a Logger that writes JSON lines to w, suitable for ingestion
// by a harness. It never colorizes its output, whatever w is; NewConsole is
// the human-readable console variant.
func New(w io.Writer, level string) Logger {
	zl := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
	return &zerologLogger{z: zl}
}

// NewConsole creates a Logger appropriate for an interactive terminal: a
// colorized console writer over os.Stdout via mattn/go-colorable (so ANSI
// sequences still work when wrapped, e.g., on Windows consoles).
func NewConsole(level string) Logger {
	cw := zerolog.ConsoleWriter{Out: colorable.NewColorable(os.Stdout), TimeFormat: time.RFC3339}
	zl := zerolog.New(cw).With().Timestamp().Logger().Level(parseLevel(level))
	return &zerologLogger{z: zl}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *zerologLogger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields) }

func (l *zerologLogger) With(fields ...Field) Logger {
	ctx := l.z.With()
	for _, f := range fields {
		ctx = addField(ctx, f)
	}
	return &zerologLogger{z: ctx.Logger()}
}

func (l *zerologLogger) log(level zerolog.Level, msg string, fields []Field) {
	ev := l.z.WithLevel(level)
	for _, f := range fields {
		ev = addEventField(ev, f)
	}
	ev.Msg(msg)
}

func addField(ctx zerolog.Context, f Field) zerolog.Context {
	switch v := f.Value.(type) {
	case string:
		return ctx.Str(f.Key, v)
	case int:
		return ctx.Int(f.Key, v)
	case int64:
		return ctx.Int64(f.Key, v)
	case float64:
		return ctx.Float64(f.Key, v)
	case bool:
		return ctx.Bool(f.Key, v)
	case time.Duration:
		return ctx.Dur(f.Key, v)
	default:
		return ctx.Interface(f.Key, v)
	}
}

func addEventField(ev *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return ev.Str(f.Key, v)
	case int:
		return ev.Int(f.Key, v)
	case int64:
		return ev.Int64(f.Key, v)
	case float64:
		return ev.Float64(f.Key, v)
	case bool:
		return ev.Bool(f.Key, v)
	case time.Duration:
		return ev.Dur(f.Key, v)
	default:
		return ev.Interface(f.Key, v)
	}
}
