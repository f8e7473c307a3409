package scsiq

// Fixed-size command descriptor blocks. Each command defines its own
// bit-level layout over one of these and fills it through typed setters.
type (
	CDB6  [6]byte
	CDB10 [10]byte
	CDB12 [12]byte
	CDB16 [16]byte
)

// Operation codes for the commands this package implements.
const (
	opTestUnitReady   = 0x00
	opInquiry         = 0x12
	opServiceActionIn = 0x9e
	opReportLuns      = 0xa0
)

// Service actions under SERVICE ACTION IN (16).
const (
	saReadCapacity16  = 0x10
	saGetStreamStatus = 0x16
)
