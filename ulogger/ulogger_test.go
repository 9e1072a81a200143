package ulogger_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/ordishs/gocore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var lines []map[string]interface{}

	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))

		lines = append(lines, m)
	}

	return lines
}

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("ledger",
		ulogger.WithWriter(&buf),
		ulogger.WithPrettyLogs(false),
		ulogger.WithLevel("DEBUG"),
	)

	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "two")
	logger.Warnf("warn")
	logger.Errorf("error")

	lines := jsonLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "debug 1", lines[0]["message"])
	assert.Equal(t, "info two", lines[1]["message"])
	assert.Equal(t, "warn", lines[2]["level"])
	assert.Equal(t, "error", lines[3]["level"])
	assert.Equal(t, "ledger", lines[3]["service"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected int
		lines    int
	}{
		{"DEBUG", int(gocore.DEBUG), 4},
		{"INFO", int(gocore.INFO), 3},
		{"WARN", int(gocore.WARN), 2},
		{"ERROR", int(gocore.ERROR), 1},
		{"bogus", int(gocore.INFO), 3},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer

			logger := ulogger.New("test", ulogger.WithWriter(&buf), ulogger.WithPrettyLogs(false), ulogger.WithLevel(tt.level))
			assert.Equal(t, tt.expected, logger.LogLevel())

			logger.Debugf("d")
			logger.Infof("i")
			logger.Warnf("w")
			logger.Errorf("e")

			assert.Len(t, jsonLines(t, &buf), tt.lines)
		})
	}
}

func TestChildLoggerInheritsOptions(t *testing.T) {
	var buf bytes.Buffer

	parent := ulogger.New("parent", ulogger.WithWriter(&buf), ulogger.WithPrettyLogs(false), ulogger.WithLevel("WARN"))

	child := parent.New("child")
	child.Infof("hidden")
	child.Warnf("shown")

	lines := jsonLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "child", lines[0]["service"])

	dup := parent.Duplicate(ulogger.WithLevel("DEBUG"))
	dup.Debugf("now visible")

	lines = jsonLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "parent", lines[0]["service"])
}

func TestPrettyLogging(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer

	logger := ulogger.New("http", ulogger.WithWriter(&buf))
	logger.Infof("listening on %s", ":8090")

	out := buf.String()
	assert.True(t, strings.Contains(out, "| INFO  |"), out)
	assert.True(t, strings.Contains(out, "| http    | listening on :8090"), out)
}

func TestGoCoreLoggerFactory(t *testing.T) {
	logger := ulogger.New("gocore-test", ulogger.WithLoggerType("gocore"), ulogger.WithLevel("DEBUG"))

	_, ok := logger.(*ulogger.GoCoreLogger)
	require.True(t, ok)
	assert.Equal(t, int(gocore.DEBUG), logger.LogLevel())
}

func TestTestLoggers(t *testing.T) {
	var l ulogger.Logger = ulogger.TestLogger{}
	l.Infof("nothing")
	assert.Equal(t, ulogger.TestLogger{}, l.New("x"))

	l = ulogger.NewVerboseTestLogger(t)
	l.Infof("visible in -v output")

	el := ulogger.NewErrorTestLogger(t)
	el.SkipFailOnError(true)
	el.Errorf("logged, not failed")
	el.Shutdown()
	el.Errorf("dropped")
}
