package validator

type Options struct {
	allowIntraBlockSpends bool
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

func NewDefaultOptions() *Options {
	return &Options{
		allowIntraBlockSpends: true,
	}
}

func ProcessOptions(opts ...Option) *Options {
	options := NewDefaultOptions()
	for _, o := range opts {
		o(options)
	}

	return options
}

// WithAllowIntraBlockSpends controls whether a transaction may spend an output created by
// an earlier transaction of the same block. When disabled, every input must reference an
// output committed in a previous block.
func WithAllowIntraBlockSpends(allow bool) Option {
	return func(o *Options) {
		o.allowIntraBlockSpends = allow
	}
}
