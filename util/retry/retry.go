// Package retry re-runs idempotent operations with linear or capped exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/bsv-blockchain/utxoindexer/ulogger"
)

type Options struct {
	RetryCount          int
	BackoffMultiplier   int
	BackoffDurationType time.Duration
	Message             string
	InfiniteRetry       bool
	ExponentialBackoff  bool
	BackoffFactor       float64
	MaxBackoff          time.Duration
	ShouldRetry         func(err error) bool
}

type Option func(*Options)

func WithRetryCount(count int) Option {
	return func(o *Options) {
		o.RetryCount = count
	}
}

func WithBackoffMultiplier(multiplier int) Option {
	return func(o *Options) {
		o.BackoffMultiplier = multiplier
	}
}

func WithBackoffDurationType(d time.Duration) Option {
	return func(o *Options) {
		o.BackoffDurationType = d
	}
}

func WithMessage(message string) Option {
	return func(o *Options) {
		o.Message = message
	}
}

func WithInfiniteRetry() Option {
	return func(o *Options) {
		o.InfiniteRetry = true
	}
}

func WithExponentialBackoff() Option {
	return func(o *Options) {
		o.ExponentialBackoff = true
	}
}

func WithBackoffFactor(factor float64) Option {
	return func(o *Options) {
		o.BackoffFactor = factor
	}
}

func WithMaxBackoff(d time.Duration) Option {
	return func(o *Options) {
		o.MaxBackoff = d
	}
}

// WithShouldRetry stops retrying as soon as fn returns false for an error.
func WithShouldRetry(fn func(err error) bool) Option {
	return func(o *Options) {
		o.ShouldRetry = fn
	}
}

// Retry calls f until it succeeds, the attempts are used up, ShouldRetry rejects the
// error or ctx is done. It returns the last result and error of f, or ctx.Err().
func Retry[T any](ctx context.Context, logger ulogger.Logger, f func() (T, error), opts ...Option) (T, error) {
	options := &Options{
		RetryCount:          3,
		BackoffMultiplier:   2,
		BackoffDurationType: time.Second,
		Message:             "retrying",
		BackoffFactor:       2.0,
		MaxBackoff:          30 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	var (
		result  T
		err     error
		backoff = options.BackoffDurationType
	)

	for attempt := 0; options.InfiniteRetry || attempt < options.RetryCount; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		result, err = f()
		if err == nil {
			return result, nil
		}

		if options.ShouldRetry != nil && !options.ShouldRetry(err) {
			return result, err
		}

		last := !options.InfiniteRetry && attempt == options.RetryCount-1
		if last {
			break
		}

		logger.Warnf("%s (attempt %d): %v", options.Message, attempt+1, err)

		if options.ExponentialBackoff {
			if sleepErr := sleepFunc(ctx, backoff); sleepErr != nil {
				return result, sleepErr
			}

			backoff = CappedExponentialBackoff(backoff, options.BackoffFactor, options.MaxBackoff)
		} else if sleepErr := BackoffAndSleep(ctx, attempt, options.BackoffMultiplier, options.BackoffDurationType); sleepErr != nil {
			return result, sleepErr
		}
	}

	return result, err
}
