package scsiq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scsiq_commands_issued",
		Help: "The total number of commands issued",
	})

	transportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scsiq_transport_errors",
		Help: "The total number of commands that failed at the transport",
	})

	checkConditions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scsiq_check_conditions",
		Help: "The total number of commands the device failed",
	})

	commandLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scsiq_command_time",
		Help:    "Time spent executing commands",
		Buckets: prometheus.DefBuckets,
	})
)
