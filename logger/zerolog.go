package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of rs/zerolog, for hosts that
// already route their logs through it.
type ZerologLogger struct {
	logger zerolog.Logger
	level  LogLevel
	fields map[string]any
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{
		logger: l,
		level:  LogLevelInfo,
		fields: make(map[string]any),
	}
}

func (l *ZerologLogger) SetLevel(level LogLevel) { l.level = level }

// SetFormat is a no-op: output shape belongs to the wrapped logger.
func (l *ZerologLogger) SetFormat(LogFormat) {}

func (l *ZerologLogger) SetOutput(w io.Writer) {
	l.logger = l.logger.Output(w)
}

func (l *ZerologLogger) WithFields(fields map[string]any) Logger {
	newFields := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &ZerologLogger{logger: l.logger, level: l.level, fields: newFields}
}

func (l *ZerologLogger) event(ev *zerolog.Event) *zerolog.Event {
	for k, v := range l.fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

func (l *ZerologLogger) Info(format string, args ...any) {
	if l.level >= LogLevelInfo {
		l.event(l.logger.Info()).Msg(fmt.Sprintf(format, args...))
	}
}

func (l *ZerologLogger) Warn(format string, args ...any) {
	if l.level >= LogLevelWarn {
		l.event(l.logger.Warn()).Msg(fmt.Sprintf(format, args...))
	}
}

func (l *ZerologLogger) Error(format string, args ...any) {
	if l.level >= LogLevelError {
		l.event(l.logger.Error()).Msg(fmt.Sprintf(format, args...))
	}
}

func (l *ZerologLogger) SQL(sqlStr string, duration time.Duration, args ...any) {
	if l.level < LogLevelInfo {
		return
	}
	l.event(l.logger.Info()).
		Str("sql", sqlStr).
		Dur("duration", duration).
		Interface("args", args).
		Msg("sql")
}
