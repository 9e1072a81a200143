package ulogger

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// VerboseTestLogger writes through t.Logf, so output only shows for failing tests or
// with -v. Messages below the configured level are dropped.
type VerboseTestLogger struct {
	t       testing.TB
	mu      *sync.Mutex
	service string
	level   int
}

func NewVerboseTestLogger(t testing.TB, options ...Option) *VerboseTestLogger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return &VerboseTestLogger{t: t, mu: &sync.Mutex{}, level: verboseLevel(opts.logLevel)}
}

func verboseLevel(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return 0
	case "WARN":
		return 2
	case "ERROR":
		return 3
	case "FATAL":
		return 4
	default:
		return 1
	}
}

func (l *VerboseTestLogger) LogLevel() int {
	return l.level
}

func (l *VerboseTestLogger) SetLogLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = verboseLevel(level)
}

// New shares the test and the lock with the parent and tags messages with service.
func (l *VerboseTestLogger) New(service string, _ ...Option) Logger {
	return &VerboseTestLogger{t: l.t, mu: l.mu, service: service, level: l.level}
}

func (l *VerboseTestLogger) Duplicate(_ ...Option) Logger {
	return &VerboseTestLogger{t: l.t, mu: l.mu, service: l.service, level: l.level}
}

func (l *VerboseTestLogger) Debugf(format string, args ...interface{}) {
	l.log(0, "DEBUG", format, args...)
}

func (l *VerboseTestLogger) Infof(format string, args ...interface{}) {
	l.log(1, "INFO", format, args...)
}

func (l *VerboseTestLogger) Warnf(format string, args ...interface{}) {
	l.log(2, "WARN", format, args...)
}

func (l *VerboseTestLogger) Errorf(format string, args ...interface{}) {
	l.log(3, "ERROR", format, args...)
}

func (l *VerboseTestLogger) Fatalf(format string, args ...interface{}) {
	l.t.Helper()
	l.t.Fatalf("[FATAL] %s", fmt.Sprintf(format, args...))
}

func (l *VerboseTestLogger) log(level int, name, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	if l.service != "" {
		l.t.Logf("[%s] %s: %s", name, l.service, fmt.Sprintf(format, args...))
		return
	}

	l.t.Logf("[%s] %s", name, fmt.Sprintf(format, args...))
}
