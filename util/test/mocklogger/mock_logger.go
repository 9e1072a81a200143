// Package mocklogger provides a ulogger.Logger that counts and keeps its calls, so tests
// can assert what was logged at which level.
package mocklogger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/ulogger"
)

type MockLogger struct {
	mu       sync.Mutex
	calls    map[string]int
	messages map[string][]string
}

func NewTestLogger() *MockLogger {
	return &MockLogger{
		calls:    make(map[string]int),
		messages: make(map[string][]string),
	}
}

func (l *MockLogger) LogLevel() int {
	return 0
}

func (l *MockLogger) SetLogLevel(_ string) {}

// New returns the same logger, calls of child loggers are recorded with the parent.
func (l *MockLogger) New(_ string, _ ...ulogger.Option) ulogger.Logger {
	return l
}

func (l *MockLogger) Duplicate(_ ...ulogger.Option) ulogger.Logger {
	return l
}

func (l *MockLogger) Debugf(format string, args ...interface{}) {
	l.recordCall("Debugf", format, args...)
}

func (l *MockLogger) Infof(format string, args ...interface{}) {
	l.recordCall("Infof", format, args...)
}

func (l *MockLogger) Warnf(format string, args ...interface{}) {
	l.recordCall("Warnf", format, args...)
}

func (l *MockLogger) Errorf(format string, args ...interface{}) {
	l.recordCall("Errorf", format, args...)
}

func (l *MockLogger) Fatalf(format string, args ...interface{}) {
	l.recordCall("Fatalf", format, args...)
}

func (l *MockLogger) recordCall(methodName, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[methodName]++
	l.messages[methodName] = append(l.messages[methodName], fmt.Sprintf(format, args...))
}

// AssertNumberOfCalls fails t unless methodName was called exactly expectedCalls times.
func (l *MockLogger) AssertNumberOfCalls(t *testing.T, methodName string, expectedCalls int) {
	t.Helper()

	l.mu.Lock()
	defer l.mu.Unlock()

	if actualCalls := l.calls[methodName]; actualCalls != expectedCalls {
		t.Errorf("Expected %v calls to %s, got %v: %v", expectedCalls, methodName, actualCalls, l.messages[methodName])
	}
}

// Messages returns the formatted messages logged with methodName.
func (l *MockLogger) Messages(methodName string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.messages[methodName]...)
}

func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = make(map[string]int)
	l.messages = make(map[string][]string)
}
