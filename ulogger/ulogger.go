// Package ulogger provides the logging abstraction used by every service and store.
package ulogger

// Logger is implemented by the zerolog and gocore backends and by the test loggers.
// LogLevel reports the gocore level number so callers can compare levels across backends.
type Logger interface {
	LogLevel() int
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	New(service string, options ...Option) Logger
	Duplicate(options ...Option) Logger
}

// New returns a logger for service on the backend selected by WithLoggerType, zerolog
// unless "gocore" is asked for.
func New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	if opts.loggerType == "gocore" {
		return NewGoCoreLogger(service, options...)
	}

	return NewZeroLogger(service, options...)
}
