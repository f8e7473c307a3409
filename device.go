package scsiq

import (
	"github.com/hashicorp/go-hclog"
)

// Device is the entry point for issuing commands. It binds a transport to
// a logger; the command builders hang off of it. A Device holds no
// per-command state, so one Device can build any number of commands.
type Device struct {
	tr  Transport
	log hclog.Logger
}

// NewDevice wraps a transport. The zero options use the default hclog
// logger and no tracing.
func NewDevice(tr Transport, options ...Option) *Device {
	var o opts

	for _, opt := range options {
		opt(&o)
	}

	if o.log == nil {
		o.log = hclog.L()
	}

	if o.tracer != nil {
		tr = o.tracer.Wrap(tr)
	}

	return &Device{
		tr:  tr,
		log: o.log.Named("scsiq"),
	}
}
