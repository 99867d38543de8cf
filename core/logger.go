package core

// Logger is any service that can log messages at the usual levels.
// Implementations may extract known types from `args` (eg. a logged in user)
// for richer reporting.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
