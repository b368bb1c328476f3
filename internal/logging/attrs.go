package logging

import "log/slog"

// Shared attribute keys so log lines stay greppable across packages.
const (
	FieldComponent = "component"
	FieldQueue     = "queue"
	FieldEntryID   = "entry_id"
	FieldCount     = "count"
	FieldEndpoint  = "endpoint"
	FieldStatus    = "status"
)

// Error wraps an error as a slog attribute, tolerating nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// String mirrors slog.String for symmetry with Error.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// WithComponent tags a logger with a component name used by the console
// handler as a message prefix.
func WithComponent(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(slog.String(FieldComponent, name))
}
