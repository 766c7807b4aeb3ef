package blelog

import (
	"io"

	"github.com/sirupsen/logrus"
)

type options struct {
	flags  Flags
	tracer Tracer
	logger *logrus.Logger
}

// Option configures a Log
type Option func(*options)

// WithFlags selects the categories to emit. The empty set is valid: device
// bookkeeping still runs but nothing is emitted.
func WithFlags(flags Flags) Option {
	return func(o *options) {
		o.flags = flags
	}
}

// WithTracer sets the side channel every event is echoed to. Nil disables tracing.
func WithTracer(tracer Tracer) Option {
	return func(o *options) {
		if tracer == nil {
			tracer = NopTracer{}
		}
		o.tracer = tracer
	}
}

// WithLogger sets the logger used for lifecycle diagnostics
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func defaultOptions() *options {
	return &options{
		flags:  DefaultFlags,
		tracer: NopTracer{},
	}
}

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
