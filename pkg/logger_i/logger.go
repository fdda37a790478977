package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/akolanti/DermaRAG/internal/config"
)

type Logger struct {
	inner *slog.Logger
}

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter installs the default handler writing to w. Tests use it to
// capture output.
func InitWithWriter(w io.Writer) {
	options := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	var handler slog.Handler
	if config.IS_PROD {
		options.Level = config.LOG_LEVEL_PROD
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// FromContext returns a child logger carrying the request trace id, if any.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	if trace := TraceID(ctx); trace != "" {
		return l.With(config.TRACE_ID_KEY, trace)
	}
	return l
}

// TraceID reads the trace id the middleware stored on the context.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

// WithTraceID stores trace on ctx under the shared key.
func WithTraceID(ctx context.Context, trace string) context.Context {
	//nolint:staticcheck // string key is shared with every component
	return context.WithValue(ctx, config.TRACE_ID_KEY, trace)
}
