package logger

// NoOpLogger discards everything. Used by tests and as a nil-safe default.
type NoOpLogger struct{}

// NewNop returns a logger that does nothing.
func NewNop() Logger { return &NoOpLogger{} }

func (l *NoOpLogger) Debug(msg string, fields ...Field) {}
func (l *NoOpLogger) Info(msg string, fields ...Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...Field) {}

// Fatal does not exit.
func (l *NoOpLogger) Fatal(msg string, fields ...Field) {}

func (l *NoOpLogger) With(fields ...Field) Logger { return l }
func (l *NoOpLogger) Sync() error                  { return nil }

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNop()
	}
	return l
}
