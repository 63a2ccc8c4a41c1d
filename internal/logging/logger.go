// Package logging holds the process-wide zerolog logger. Events created
// through the context helpers are stamped with the trace and span IDs of
// the active span, if any.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var logger = newLogger(os.Stdout, false)

// spanHook copies the span context attached to an event into its fields.
type spanHook struct{}

func (spanHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	sc := trace.SpanContextFromContext(e.GetCtx())
	if !sc.IsValid() {
		return
	}
	e.Str("traceId", sc.TraceID().String()).
		Str("spanId", sc.SpanID().String())
}

func newLogger(w io.Writer, withCaller bool) zerolog.Logger {
	c := zerolog.New(w).Hook(spanHook{}).With().Timestamp()
	if withCaller {
		c = c.Caller()
	}
	return c.Logger()
}

// Init picks the output for the environment: a console writer on stderr
// while developing, JSON lines on stdout otherwise. Events below level are
// dropped.
func Init(isDevelopment bool, level zerolog.Level) {
	zerolog.TimeFieldFormat = time.RFC3339

	if isDevelopment {
		logger = newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, true)
	} else {
		logger = newLogger(os.Stdout, false)
	}
	logger = logger.Level(level)
}

// SetOutput redirects the logger and keeps its level. Tests use it to
// capture or silence output.
func SetOutput(w io.Writer) {
	logger = newLogger(w, false).Level(logger.GetLevel())
}

func Logger() *zerolog.Logger {
	return &logger
}

func Info(ctx context.Context) *zerolog.Event {
	return logger.Info().Ctx(ctx)
}

func Error(ctx context.Context) *zerolog.Event {
	return logger.Error().Ctx(ctx)
}

func Debug(ctx context.Context) *zerolog.Event {
	return logger.Debug().Ctx(ctx)
}

func Warn(ctx context.Context) *zerolog.Event {
	return logger.Warn().Ctx(ctx)
}
