package tracing

import (
	"context"
	"fmt"
	"testing"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/test"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// initTestTracer installs a provider that records spans in memory instead of exporting them.
func initTestTracer(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()

	setTracerProvider(sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(recorder),
	))

	t.Cleanup(func() {
		_ = ShutdownTracer(context.Background())
	})

	return recorder
}

func TestUTracer_WithError(t *testing.T) {
	recorder := initTestTracer(t)

	logger := newLineLogger()

	_, _, endFn := Tracer("test-service").Start(context.Background(), "TestOperationWithError",
		WithLogMessage(logger, "Processing block %d", 7),
	)

	assert.Equal(t, "Processing block 7", logger.lastLog)
	assert.Equal(t, "INFO", logger.lastLevel)

	endFn(nil, errors.NewProcessingError("test error occurred"))

	assert.Contains(t, logger.lastLog, "Processing block 7 DONE in")
	assert.Contains(t, logger.lastLog, "with error: PROCESSING (3): test error occurred")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "TestOperationWithError", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}

func TestUTracer_DebugLogMessage(t *testing.T) {
	initTestTracer(t)

	logger := newLineLogger()

	_, _, endFn := Tracer("test-service").Start(context.Background(), "Debug",
		WithDebugLogMessage(logger, "looking up %s", "addr1"),
	)
	endFn()

	assert.Equal(t, "DEBUG", logger.lastLevel)
	assert.Contains(t, logger.lastLog, "looking up addr1 DONE in")
	assert.NotContains(t, logger.lastLog, "with error")
}

func TestUTracer_ChildSpans(t *testing.T) {
	recorder := initTestTracer(t)

	tracer := Tracer("test-service")

	ctx, parentSpan, endParent := tracer.Start(context.Background(), "ParentOperation",
		WithTag("height", "12"),
	)

	_, childSpan, endChild := tracer.Start(ctx, "ChildOperation", WithTag("child.id", "child-1"))
	endChild()
	endParent()

	assert.Equal(t, parentSpan.SpanContext().TraceID(), childSpan.SpanContext().TraceID())

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ChildOperation", spans[0].Name())
	assert.Equal(t, parentSpan.SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)

	require.Len(t, spans[1].Attributes(), 1)
	assert.Equal(t, "height", string(spans[1].Attributes()[0].Key))
	assert.Equal(t, "12", spans[1].Attributes()[0].Value.AsString())
}

func TestUTracer_Metrics(t *testing.T) {
	initTestTracer(t)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter"})
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_histogram"})

	for i := 0; i < 3; i++ {
		_, _, endFn := Tracer("test-service").Start(context.Background(), "Counted",
			WithCounter(counter),
			WithHistogram(histogram),
		)
		endFn()
	}

	assert.InDelta(t, 3, testutil.ToFloat64(counter), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(histogram))
}

func TestInitTracerWithoutCollector(t *testing.T) {
	tSettings := test.CreateBaseTestSettings(t)
	tSettings.Tracing.Enabled = true
	tSettings.Tracing.CollectorURL = nil

	err := InitTracer(tSettings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestShutdownWithoutProvider(t *testing.T) {
	require.NoError(t, ShutdownTracer(context.Background()))
}

type lineLogger struct {
	lastLevel string
	lastLog   string
}

func newLineLogger() *lineLogger {
	return &lineLogger{}
}

func (l *lineLogger) New(service string, options ...ulogger.Option) ulogger.Logger { return l }

func (l *lineLogger) Duplicate(options ...ulogger.Option) ulogger.Logger { return l }

func (l *lineLogger) LogLevel() int {
	return 0
}

func (l *lineLogger) SetLogLevel(level string) {}

func (l *lineLogger) Debugf(format string, args ...interface{}) {
	l.log("DEBUG", format, args...)
}

func (l *lineLogger) Infof(format string, args ...interface{}) {
	l.log("INFO", format, args...)
}

func (l *lineLogger) Warnf(format string, args ...interface{}) {
	l.log("WARN", format, args...)
}

func (l *lineLogger) Errorf(format string, args ...interface{}) {
	l.log("ERROR", format, args...)
}

func (l *lineLogger) Fatalf(format string, args ...interface{}) {
	l.log("FATAL", format, args...)
}

func (l *lineLogger) log(level string, format string, args ...interface{}) {
	l.lastLevel = level
	l.lastLog = fmt.Sprintf(format, args...)
}
