package scsiq

// READ CAPACITY (16) (SBC-4): the other service action this package
// implements under SERVICE ACTION IN (16). Fixed 32-byte reply.

const readCapacityReplyLen = 32

// CDB layout: 16 bytes.
var readCapacityCDB = newLayout(8, 3, 5, 64, 32, 8, 8)

const (
	rcOpCode = iota
	rcReserved0
	rcServiceAction
	rcObsoleteLBA
	rcAllocationLength
	rcReserved1
	rcControl
)

// Reply layout: the fields past the block length describe protection and
// logical block provisioning, which this package does not surface.
var readCapacityReply = newLayout(64, 32, 32, 64, 64)

const (
	rcrLastLBA = iota
	rcrBlockLength
	rcrProtection
	rcrReserved0
	rcrReserved1
)

// Capacity is the decoded reply.
type Capacity struct {
	LastLBA     uint64
	BlockLength uint32
}

// SizeBytes returns the device's usable size in bytes.
func (c Capacity) SizeBytes() uint64 {
	return (c.LastLBA + 1) * uint64(c.BlockLength)
}

type ReadCapacityCommand struct {
	dev *Device

	cdb    CDB16
	issued bool
}

func (d *Device) ReadCapacity16() *ReadCapacityCommand {
	c := &ReadCapacityCommand{dev: d}

	readCapacityCDB.mustPut(c.cdb[:], rcOpCode, opServiceActionIn)
	readCapacityCDB.mustPut(c.cdb[:], rcServiceAction, saReadCapacity16)
	readCapacityCDB.mustPut(c.cdb[:], rcAllocationLength, readCapacityReplyLen)

	return c
}

func (c *ReadCapacityCommand) Control(value uint8) *ReadCapacityCommand {
	readCapacityCDB.mustPut(c.cdb[:], rcControl, uint64(value))
	return c
}

func (c *ReadCapacityCommand) Issue() (*Capacity, error) {
	if c.issued {
		return nil, ErrCommandConsumed
	}

	c.issued = true

	c.dev.log.Debug("issuing read capacity (16)")

	return Issue[*Capacity](c.dev, &readCapacityRequest{cdb: c.cdb})
}

type readCapacityRequest struct {
	cdb  CDB16
	data *ParamBuffer
}

func (r *readCapacityRequest) Direction() DataDirection {
	return DirectionFromDevice
}

func (r *readCapacityRequest) CDB() []byte {
	return r.cdb[:]
}

func (r *readCapacityRequest) Data() *ParamBuffer {
	if r.data == nil {
		r.data = NewParamBuffer(readCapacityReplyLen, 0, 0)
	}

	return r.data
}

func (r *readCapacityRequest) DataSize() uint32 {
	return readCapacityReplyLen
}

func (r *readCapacityRequest) ProcessResult(res Result) (*Capacity, error) {
	if err := res.Err(); err != nil {
		return nil, err
	}

	b := res.Data.Header()

	return &Capacity{
		LastLBA:     readCapacityReply.get(b, rcrLastLBA),
		BlockLength: uint32(readCapacityReply.get(b, rcrBlockLength)),
	}, nil
}
