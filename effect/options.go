package effect

import (
	"github.com/sirupsen/logrus"
)

type options struct {
	sampleRate float32
	log        logrus.FieldLogger
	metering   bool
	strict     bool
}

// Option configures a Registry or a Chain. A Registry ignores the options
// that only apply to chains.
type Option func(*options)

// WithSampleRate sets the sample rate effects are built for.
func WithSampleRate(sr float32) Option {
	return func(o *options) {
		if sr > 0 {
			o.sampleRate = sr
		}
	}
}

// WithLogger sets the logger for registration warnings and chain changes.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetering enables per-entry level and CPU meters on a Chain.
func WithMetering(enabled bool) Option {
	return func(o *options) {
		o.metering = enabled
	}
}

// WithStrictParams makes a Chain reject parameter names that the effect does
// not declare, with a *param.UnknownParameterError.
func WithStrictParams(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
