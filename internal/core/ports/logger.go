package ports

// Logger defines the interface for logging.
// Debug, Info and Warn accept slog-style key/value pairs after the message.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(err error)
}
