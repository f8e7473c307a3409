package scsiq

import (
	"crypto/sha256"
	"time"

	"github.com/lab47/mode"
	"github.com/mr-tron/base58"
)

// DataDirection declares which way a transaction moves data.
type DataDirection int

const (
	DirectionNone DataDirection = iota
	DirectionFromDevice
	DirectionToDevice
)

func (d DataDirection) String() string {
	switch d {
	case DirectionFromDevice:
		return "from-device"
	case DirectionToDevice:
		return "to-device"
	default:
		return "none"
	}
}

// SCSI status byte values a transport reports after a transaction.
const (
	StatusGood           = 0x00
	StatusCheckCondition = 0x02
	StatusBusy           = 0x08
	StatusTaskSetFull    = 0x28
)

// Request is the transport-facing half of a command: everything a
// transport needs to execute a transaction without knowing which command
// it is carrying.
//
// Data must return the same buffer on every call; the transport fills it
// and hands it back through the Result.
type Request interface {
	Direction() DataDirection
	CDB() []byte
	Data() *ParamBuffer
	DataSize() uint32
}

// Command is a Request that also knows how to turn the completed
// transaction into its typed result.
type Command[T any] interface {
	Request
	ProcessResult(Result) (T, error)
}

// Result is the outcome of one transaction. TransportErr is set when the
// execution mechanism itself failed; Status and Sense describe the
// device's verdict when it did not. Data is the request's buffer as
// filled (possibly partially) by the transaction.
type Result struct {
	TransportErr error
	Status       byte
	Sense        []byte
	Data         *ParamBuffer
}

// Err reports the first failure in the outcome. Transport failures take
// precedence: if the transaction could not be carried out, the protocol
// status bytes are meaningless and are not inspected.
func (r Result) Err() error {
	if err := r.CheckTransport(); err != nil {
		return err
	}

	return r.CheckStatus()
}

// CheckTransport reports a transport-level failure, if any.
func (r Result) CheckTransport() error {
	if r.TransportErr == nil {
		return nil
	}

	return &TransportError{Err: r.TransportErr}
}

// CheckStatus reports a protocol-level failure, if any.
func (r Result) CheckStatus() error {
	if r.Status == StatusGood {
		return nil
	}

	se := &SenseError{
		Status: r.Status,
		Raw:    r.Sense,
	}

	if sd, ok := ParseSense(r.Sense); ok {
		se.Sense = sd
	}

	return se
}

// Transport executes a request against a device. The returned Result
// always carries both the transport status and the protocol status; it
// never panics and never retries.
type Transport interface {
	Issue(Request) Result
}

// Issue dispatches one command through the device's transport and decodes
// the outcome. Every command funnels through here so metrics and debug
// logging see all traffic.
func Issue[T any](d *Device, cmd Command[T]) (T, error) {
	start := time.Now()

	res := d.tr.Issue(cmd)

	commandLatency.Observe(time.Since(start).Seconds())
	commandsIssued.Inc()

	if res.TransportErr != nil {
		transportErrors.Inc()
	} else if res.Status != StatusGood {
		checkConditions.Inc()
	}

	if mode.Debug() && res.Data != nil && res.Data.Len() > 0 {
		d.log.Trace("parameter data received",
			"direction", cmd.Direction(),
			"bytes", res.Data.Len(),
			"digest", bufSum(res.Data.Bytes()))
	}

	return cmd.ProcessResult(res)
}

func bufSum(b []byte) string {
	empty := true

	for _, x := range b {
		if x != 0 {
			empty = false
			break
		}
	}

	if empty {
		return "0"
	}

	x := sha256.Sum256(b)
	return base58.Encode(x[:])
}
