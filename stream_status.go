package scsiq

// GET STREAM STATUS (SBC-4): reports the stream identifiers of the
// device's open streams. The reply is a fixed 8-byte header followed by
// one 8-byte descriptor per stream, so the caller has to decide up front
// how many descriptors it has room for.

const (
	streamHeaderSize     = 8
	streamDescriptorSize = 8

	// MaxStreamDescriptors is the largest descriptor count whose
	// parameter data length still fits the CDB's 32-bit allocation
	// length field.
	MaxStreamDescriptors = (1<<32 - 1 - streamHeaderSize) / streamDescriptorSize
)

// CDB layout: 16 bytes.
var streamStatusCDB = newLayout(8, 3, 5, 16, 16, 32, 32, 8, 8)

const (
	ssOpCode = iota
	ssReserved0
	ssServiceAction
	ssReserved1
	ssStartingStreamID
	ssReserved2
	ssAllocationLength
	ssReserved3
	ssControl
)

// Parameter header layout: 8 bytes.
var streamHeader = newLayout(32, 16, 16)

const (
	shParameterDataLength = iota
	shReserved
	shOpenStreamCount
)

// Stream status descriptor layout: 8 bytes.
var streamDescriptor = newLayout(16, 16, 32)

const (
	sdReserved0 = iota
	sdStreamID
	sdReserved1
)

// StreamStatus is the decoded reply.
//
// TotalDescriptorLength is the number of descriptors the device said it
// had, before clamping; NumberOfOpenStreams is the header's open stream
// count, verbatim. Neither is required to equal len(StreamIdentifiers):
// the device may have more open streams than the command asked for room
// to report.
type StreamStatus struct {
	TotalDescriptorLength int
	NumberOfOpenStreams   uint16
	StreamIdentifiers     []uint16
}

// GetStreamStatusCommand accumulates configuration for one GET STREAM
// STATUS invocation. Setters chain; Issue is terminal and one-shot.
type GetStreamStatusCommand struct {
	dev *Device

	cdb              CDB16
	descriptorLength uint32
	issued           bool
}

// GetStreamStatus starts building a GET STREAM STATUS command.
func (d *Device) GetStreamStatus() *GetStreamStatusCommand {
	c := &GetStreamStatusCommand{dev: d}

	streamStatusCDB.mustPut(c.cdb[:], ssOpCode, opServiceActionIn)
	streamStatusCDB.mustPut(c.cdb[:], ssServiceAction, saGetStreamStatus)

	return c
}

// StartingStreamIdentifier sets the first stream identifier the device
// should report on.
func (c *GetStreamStatusCommand) StartingStreamIdentifier(value uint16) *GetStreamStatusCommand {
	streamStatusCDB.mustPut(c.cdb[:], ssStartingStreamID, uint64(value))
	return c
}

// Control sets the CDB's control byte.
func (c *GetStreamStatusCommand) Control(value uint8) *GetStreamStatusCommand {
	streamStatusCDB.mustPut(c.cdb[:], ssControl, uint64(value))
	return c
}

// DescriptorLength sets how many stream status descriptors the reply
// buffer will hold. The device may report more streams than this; only
// this many identifiers come back.
func (c *GetStreamStatusCommand) DescriptorLength(value uint32) *GetStreamStatusCommand {
	c.descriptorLength = value
	return c
}

// Issue executes the configured command. It consumes the builder: a
// second call fails with ErrCommandConsumed.
func (c *GetStreamStatusCommand) Issue() (*StreamStatus, error) {
	if c.issued {
		return nil, ErrCommandConsumed
	}

	c.issued = true

	if c.descriptorLength > MaxStreamDescriptors {
		return nil, &OutOfBoundsError{
			Field: "descriptor length",
			Limit: MaxStreamDescriptors,
			Value: uint64(c.descriptorLength),
		}
	}

	alloc := uint64(streamHeaderSize) + uint64(c.descriptorLength)*streamDescriptorSize
	streamStatusCDB.mustPut(c.cdb[:], ssAllocationLength, alloc)

	c.dev.log.Debug("issuing get stream status",
		"starting", streamStatusCDB.get(c.cdb[:], ssStartingStreamID),
		"descriptors", c.descriptorLength)

	return Issue[*StreamStatus](c.dev, &streamStatusRequest{
		cdb:      c.cdb,
		capacity: c.descriptorLength,
	})
}

type streamStatusRequest struct {
	cdb      CDB16
	capacity uint32

	data *ParamBuffer
}

func (r *streamStatusRequest) Direction() DataDirection {
	return DirectionFromDevice
}

func (r *streamStatusRequest) CDB() []byte {
	return r.cdb[:]
}

func (r *streamStatusRequest) Data() *ParamBuffer {
	if r.data == nil {
		r.data = NewParamBuffer(streamHeaderSize, streamDescriptorSize, int(r.capacity))
	}

	return r.data
}

func (r *streamStatusRequest) DataSize() uint32 {
	return streamHeaderSize + r.capacity*streamDescriptorSize
}

func (r *streamStatusRequest) ProcessResult(res Result) (*StreamStatus, error) {
	if err := res.Err(); err != nil {
		return nil, err
	}

	hdr := res.Data.Header()

	// Everything past the 8-byte header is descriptors. A length
	// shorter than the header means a confused device; treat as empty.
	paramLen := streamHeader.get(hdr, shParameterDataLength)

	var reported int
	if paramLen >= streamHeaderSize {
		reported = int((paramLen - streamHeaderSize) / streamDescriptorSize)
	}

	n := res.Data.ElementCount(reported)

	ids := make([]uint16, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, uint16(streamDescriptor.get(res.Data.Element(i), sdStreamID)))
	}

	return &StreamStatus{
		TotalDescriptorLength: reported,
		NumberOfOpenStreams:   uint16(streamHeader.get(hdr, shOpenStreamCount)),
		StreamIdentifiers:     ids,
	}, nil
}
