package scsiq

import "fmt"

// SenseKey is the 4-bit classification field of a sense buffer.
type SenseKey uint8

const (
	SenseNone           SenseKey = 0x0
	SenseRecoveredError SenseKey = 0x1
	SenseNotReady       SenseKey = 0x2
	SenseMediumError    SenseKey = 0x3
	SenseHardwareError  SenseKey = 0x4
	SenseIllegalRequest SenseKey = 0x5
	SenseUnitAttention  SenseKey = 0x6
	SenseDataProtect    SenseKey = 0x7
	SenseAbortedCommand SenseKey = 0xb
)

var senseKeyNames = map[SenseKey]string{
	SenseNone:           "no sense",
	SenseRecoveredError: "recovered error",
	SenseNotReady:       "not ready",
	SenseMediumError:    "medium error",
	SenseHardwareError:  "hardware error",
	SenseIllegalRequest: "illegal request",
	SenseUnitAttention:  "unit attention",
	SenseDataProtect:    "data protect",
	SenseAbortedCommand: "aborted command",
}

func (k SenseKey) String() string {
	if name, ok := senseKeyNames[k]; ok {
		return name
	}

	return fmt.Sprintf("sense key %#x", uint8(k))
}

// SenseData is the decoded portion of a sense buffer common to both the
// fixed and descriptor formats.
type SenseData struct {
	ResponseCode byte
	Key          SenseKey
	ASC          byte
	ASCQ         byte
}

// ParseSense decodes a raw sense buffer. It understands the fixed format
// (response codes 0x70/0x71) and the descriptor format (0x72/0x73); for
// anything else, or a buffer too short to hold the fields, it reports
// false.
func ParseSense(b []byte) (SenseData, bool) {
	if len(b) == 0 {
		return SenseData{}, false
	}

	code := b[0] & 0x7f

	switch code {
	case 0x70, 0x71:
		if len(b) < 14 {
			return SenseData{}, false
		}

		return SenseData{
			ResponseCode: code,
			Key:          SenseKey(b[2] & 0x0f),
			ASC:          b[12],
			ASCQ:         b[13],
		}, true

	case 0x72, 0x73:
		if len(b) < 4 {
			return SenseData{}, false
		}

		return SenseData{
			ResponseCode: code,
			Key:          SenseKey(b[1] & 0x0f),
			ASC:          b[2],
			ASCQ:         b[3],
		}, true
	}

	return SenseData{}, false
}
