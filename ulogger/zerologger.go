package ulogger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// ANSI codes of the console output.
const (
	ansiBold   = 1
	ansiRed    = 31
	ansiGreen  = 32
	ansiYellow = 33
	ansiBlue   = 34
)

const callerWidth = 32

type zerologLevel struct {
	name   string
	level  zerolog.Level
	gocore int
	colour int
}

var zerologLevels = []zerologLevel{
	{"DEBUG", zerolog.DebugLevel, int(gocore.DEBUG), ansiBlue},
	{"INFO", zerolog.InfoLevel, int(gocore.INFO), ansiGreen},
	{"WARN", zerolog.WarnLevel, int(gocore.WARN), ansiYellow},
	{"ERROR", zerolog.ErrorLevel, int(gocore.ERROR), ansiRed},
	{"FATAL", zerolog.FatalLevel, int(gocore.FATAL), ansiRed},
	{"PANIC", zerolog.PanicLevel, int(gocore.FATAL), ansiRed},
}

// lookupLevel falls back to INFO for unknown names and levels.
func lookupLevel(match func(l zerologLevel) bool) zerologLevel {
	for _, l := range zerologLevels {
		if match(l) {
			return l
		}
	}

	return zerologLevels[1]
}

// ZLoggerWrapper is the zerolog backend, writing JSON lines or a coloured console format.
type ZLoggerWrapper struct {
	zerolog.Logger
	service string
	w       io.Writer
	pretty  bool
}

func NewZeroLogger(service string, options ...Option) *ZLoggerWrapper {
	if service == "" {
		service = "indexer"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	ctx := zerolog.New(opts.writer).With().Str("service", service)
	if opts.prettyLogs {
		ctx = zerolog.New(consoleWriter(opts.writer, service)).With()
	}

	z := &ZLoggerWrapper{
		Logger: ctx.
			CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1 + opts.skip).
			Timestamp().
			Logger(),
		service: service,
		w:       opts.writer,
		pretty:  opts.prettyLogs,
	}

	z.SetLogLevel(opts.logLevel)

	return z
}

// consoleWriter lays a line out as "time | LEVEL | service | message fields caller".
// Colour is only used on a terminal and never when NO_COLOR is set.
func consoleWriter(writer io.Writer, service string) zerolog.ConsoleWriter {
	plain := os.Getenv("NO_COLOR") != ""
	if f, ok := writer.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		plain = true
	}

	paint := func(s string, code int) string {
		if plain {
			return s
		}

		return fmt.Sprintf("\x1b[%dm%s\x1b[0m", code, s)
	}

	return zerolog.ConsoleWriter{
		Out:        writer,
		NoColor:    plain,
		TimeFormat: time.TimeOnly,
		FormatLevel: func(i interface{}) string {
			name, _ := i.(string)
			l := lookupLevel(func(l zerologLevel) bool { return strings.EqualFold(l.name, name) })

			return "| " + paint(fmt.Sprintf("%-6s", strings.ToUpper(name)), l.colour) + "|"
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("| %-8s| %s", service, i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
		FormatCaller: func(i interface{}) string {
			c, _ := i.(string)
			if c == "" {
				return c
			}

			return paint(fmt.Sprintf("%-*s", callerWidth, shortCaller(c)), ansiBold)
		},
	}
}

// shortCaller makes c relative to the working directory and keeps the trailing path
// elements that fit in callerWidth.
func shortCaller(c string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, c); err == nil {
			c = rel
		}
	}

	parts := strings.Split(c, "/")
	short := parts[len(parts)-1]

	for i := len(parts) - 2; i >= 0 && len(short)+len(parts[i])+1 <= callerWidth; i-- {
		short = parts[i] + "/" + short
	}

	return short
}

// New creates a logger for another service that keeps this logger's writer, format and level.
func (z *ZLoggerWrapper) New(service string, options ...Option) Logger {
	inherited := []Option{
		WithWriter(z.w),
		WithLevel(lookupLevel(func(l zerologLevel) bool { return l.level == z.Logger.GetLevel() }).name),
		WithPrettyLogs(z.pretty),
	}

	return NewZeroLogger(service, append(inherited, options...)...)
}

func (z *ZLoggerWrapper) Duplicate(options ...Option) Logger {
	return z.New(z.service, options...)
}

func (z *ZLoggerWrapper) SetLogLevel(logLevel string) {
	l := lookupLevel(func(l zerologLevel) bool { return strings.EqualFold(l.name, logLevel) })
	z.Logger = z.Logger.Level(l.level)
}

func (z *ZLoggerWrapper) LogLevel() int {
	return lookupLevel(func(l zerologLevel) bool { return l.level == z.Logger.GetLevel() }).gocore
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Fatalf(format string, args ...interface{}) {
	z.Logger.Fatal().Msgf(format, args...)
}

// Write lets the logger stand in for the standard library log output.
func (z *ZLoggerWrapper) Write(p []byte) (n int, err error) {
	return z.Logger.Write(p)
}
