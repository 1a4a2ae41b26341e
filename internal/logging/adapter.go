package logging

import (
	"log/slog"
)

// Logger is the narrow interface the local HTTP servers log through. It
// matches the slog call shape (message plus alternating key-value pairs) so
// the default implementation is a thin forward, while tests can substitute a
// capturing implementation.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogLogger forwards to an *slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps the given slog.Logger. A nil logger falls back to
// slog.Default.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// DefaultLogger returns a Logger backed by the default slog.Logger.
func DefaultLogger() *SlogLogger {
	return NewSlogLogger(slog.Default())
}
