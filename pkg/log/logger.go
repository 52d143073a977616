package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = newZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
)

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the process-wide default logger.
// Intended for tests and for the CLI entry point.
func SetLogger(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Setup configures the default logger with the given minimum level,
// writing JSON records to w.
func Setup(loglevel string, w io.Writer) {
	zl := zerolog.New(w).Level(toZerologLevel(loglevel)).With().Timestamp().Logger()
	SetLogger(newZerologLogger(zl))
}

func toZerologLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

func newZerologLogger(zl zerolog.Logger) *zerologLogger {
	return &zerologLogger{zl: zl}
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(z.zl.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(z.zl.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(z.zl.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...any) { z.emit(z.zl.Error(), msg, fields) }

// With returns a logger with the given fields attached to every record.
func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.zl.With()
	for k, v := range pairs(fields) {
		ctx = ctx.Interface(k, v)
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (z *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	for k, v := range pairs(fields) {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			if st := extractStacktrace(err); st != "" {
				e = e.Str(StacktraceAttrKey, st)
			}
			continue
		}
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

// pairs converts a variadic key/value list into a map, dropping a trailing
// odd value and stringifying non-string keys the way slog does.
func pairs(fields []any) map[string]any {
	m := make(map[string]any, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		m[key] = fields[i+1]
	}
	return m
}

// extractStacktrace pulls the stack trace recorded by cockroachdb/errors, if any.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
