package core

// Logger is any leveled logger the app can report through.
// Implementations may inspect args for well-known types (eg. a user.User
// to attribute the event to a person).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
