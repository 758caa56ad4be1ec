package port

// Logger defines a common logging interface for the application.
// Arguments follow the slog key/value convention.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that adds the given attributes to every record.
	With(args ...any) Logger
}
