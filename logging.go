package history

import (
	"context"
	"log/slog"
	"time"
)

// LogEvent describes a history or branch operation for logging. Engine, Expr
// and Duration are only set for query evaluations.
type LogEvent struct {
	Op       string
	Branch   string
	Cursor   int
	Engine   string
	Expr     string
	Duration time.Duration
	Err      error
}

// Logger records history events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

func loggerOrNoop(logger Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return logger
}

// NewSlogLogger adapts a slog.Logger. Failed operations are logged at warn
// level, everything else at debug.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Log(event LogEvent) {
	attrs := []slog.Attr{slog.String("op", event.Op)}
	if event.Branch != "" {
		attrs = append(attrs, slog.String("branch", event.Branch))
	}
	attrs = append(attrs, slog.Int("cursor", event.Cursor))
	if event.Engine != "" {
		attrs = append(attrs,
			slog.String("engine", event.Engine),
			slog.String("expr", event.Expr),
			slog.Duration("duration", event.Duration),
		)
	}

	level := slog.LevelDebug
	msg := "history"
	if event.Err != nil {
		level = slog.LevelWarn
		msg = "history operation failed"
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
