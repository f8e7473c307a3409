//go:build linux

package sgio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransportFault(t *testing.T) {
	r := require.New(t)

	// clean transaction
	r.False(transportFault(0, 0))

	// check condition with sense: the sg driver sets DRIVER_SENSE, which
	// must not be treated as a transport failure
	r.False(transportFault(0, driverSense))

	// host adapter failures
	r.True(transportFault(0x01, 0)) // DID_NO_CONNECT
	r.True(transportFault(0x07, driverSense))

	// real driver failures, with and without the sense flag
	r.True(transportFault(0, 0x01)) // DRIVER_BUSY
	r.True(transportFault(0, 0x06)) // DRIVER_TIMEOUT
	r.True(transportFault(0, driverSense|0x06))

	// suggestion bits above the low nibble are ignored
	r.False(transportFault(0, 0x20))
	r.False(transportFault(0, 0x80|driverSense))
}
