package scsiq

import "github.com/hashicorp/go-hclog"

type opts struct {
	log    hclog.Logger
	tracer *Tracer
}

type Option func(o *opts)

func WithLogger(log hclog.Logger) Option {
	return func(o *opts) {
		o.log = log
	}
}

// WithTracer records every transaction the device performs to the
// tracer's capture stream.
func WithTracer(t *Tracer) Option {
	return func(o *opts) {
		o.tracer = t
	}
}
