package scsiq

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrCommandConsumed is returned when a configured command is issued a
// second time. Issuing is one-shot; build a fresh command instead.
var ErrCommandConsumed = errors.New("command already issued")

// OutOfBoundsError reports a caller-supplied value that exceeds what the
// protocol can represent. It is raised before any transaction is
// attempted.
type OutOfBoundsError struct {
	Field string
	Limit uint64
	Value uint64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"%s is out of bounds. The maximum possible value is %d, but %d was provided.",
		e.Field, e.Limit, e.Value)
}

// TransportError means the execution mechanism itself failed; the device
// never rendered a verdict on the command.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SenseError means the transaction completed but the device reported a
// fault condition. Sense holds the decoded sense data when the device
// provided a parseable sense buffer.
type SenseError struct {
	Status byte
	Sense  SenseData
	Raw    []byte
}

func (e *SenseError) Error() string {
	if e.Sense.ResponseCode == 0 {
		return fmt.Sprintf("device reported status %#02x", e.Status)
	}

	return fmt.Sprintf("device reported %s (asc %#02x, ascq %#02x)",
		e.Sense.Key, e.Sense.ASC, e.Sense.ASCQ)
}
