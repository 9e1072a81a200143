package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type statsKey struct{}

var rootStat = gocore.NewStat("utxoindexer")

type Options func(s *TraceOptions)

type TraceOptions struct {
	ParentStat   *gocore.Stat
	Histogram    prometheus.Histogram
	Counter      prometheus.Counter
	Tags         []attribute.KeyValue
	Logger       ulogger.Logger
	LogMessage   string
	LogArgs      []interface{}
	DebugLogging bool
}

func WithParentStat(stat *gocore.Stat) Options {
	return func(s *TraceOptions) {
		s.ParentStat = stat
	}
}

// WithHistogram sets the prometheus histogram observed with the span duration in seconds.
func WithHistogram(histogram prometheus.Histogram) Options {
	return func(s *TraceOptions) {
		s.Histogram = histogram
	}
}

// WithCounter sets the prometheus counter incremented when the span ends.
func WithCounter(counter prometheus.Counter) Options {
	return func(s *TraceOptions) {
		s.Counter = counter
	}
}

func WithTag(key, value string) Options {
	return func(s *TraceOptions) {
		s.Tags = append(s.Tags, attribute.String(key, value))
	}
}

// WithLogMessage logs format at INFO when the span starts, and again with the duration
// when it ends. Use it on request entry points only.
func WithLogMessage(logger ulogger.Logger, format string, args ...interface{}) Options {
	return func(s *TraceOptions) {
		s.Logger = logger
		s.LogMessage = format
		s.LogArgs = args
	}
}

// WithDebugLogMessage is WithLogMessage at DEBUG level.
func WithDebugLogMessage(logger ulogger.Logger, format string, args ...interface{}) Options {
	return func(s *TraceOptions) {
		s.Logger = logger
		s.LogMessage = format
		s.LogArgs = args
		s.DebugLogging = true
	}
}

type UTracer struct {
	service string
	tracer  trace.Tracer
}

// Tracer returns a tracer named after service, backed by the global tracer provider.
func Tracer(service string) *UTracer {
	return &UTracer{
		service: service,
		tracer:  otel.Tracer(service),
	}
}

// Start opens a span and a gocore stat. The stat is a child of the stat found in ctx, of
// the WithParentStat option, or of the root stat, in that order. The returned function
// ends both and records the first non-nil error passed to it.
func (u *UTracer) Start(ctx context.Context, name string, setOptions ...Options) (context.Context, trace.Span, func(...error)) {
	options := &TraceOptions{}
	for _, opt := range setOptions {
		opt(options)
	}

	ctx, span := u.tracer.Start(ctx, name, trace.WithAttributes(options.Tags...))

	parentStat, ok := ctx.Value(statsKey{}).(*gocore.Stat)
	if !ok {
		parentStat = options.ParentStat
	}

	if parentStat == nil {
		parentStat = rootStat
	}

	stat := parentStat.NewStat(name)
	ctx = context.WithValue(ctx, statsKey{}, stat)

	start := gocore.CurrentTime()

	log := func(format string, args ...interface{}) {
		if options.DebugLogging {
			options.Logger.Debugf(format, args...)
		} else {
			options.Logger.Infof(format, args...)
		}
	}

	logging := options.Logger != nil && options.LogMessage != ""
	if logging {
		log(options.LogMessage, options.LogArgs...)
	}

	return ctx, span, func(errs ...error) {
		var err error

		for _, e := range errs {
			if e != nil {
				err = e
				break
			}
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
		stat.AddTime(start)

		if options.Histogram != nil {
			options.Histogram.Observe(time.Since(start).Seconds())
		}

		if options.Counter != nil {
			options.Counter.Inc()
		}

		if logging {
			done := fmt.Sprintf(" DONE in %s", time.Since(start))
			if err != nil {
				done += fmt.Sprintf(" with error: %v", err)
			}

			log(options.LogMessage+done, options.LogArgs...)
		}
	}
}
