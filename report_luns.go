package scsiq

// REPORT LUNS (SPC-4). The reply has the same flexible shape as GET
// STREAM STATUS: an 8-byte header whose length field sizes a run of
// 8-byte entries, with the same clamp-to-capacity rule on decode.

const (
	lunHeaderSize = 8
	lunEntrySize  = 8

	// MaxLunEntries mirrors MaxStreamDescriptors: the allocation length
	// field is 32 bits here too.
	MaxLunEntries = (1<<32 - 1 - lunHeaderSize) / lunEntrySize

	// SELECT REPORT values.
	ReportAddressable = 0x00
	ReportWellKnown   = 0x01
	ReportAll         = 0x02
)

// CDB layout: 12 bytes.
var reportLunsCDB = newLayout(8, 8, 8, 24, 32, 8, 8)

const (
	rlOpCode = iota
	rlReserved0
	rlSelectReport
	rlReserved1
	rlAllocationLength
	rlReserved2
	rlControl
)

// Header layout: 8 bytes. The LUN list length counts entry bytes only,
// not the header.
var lunListHeader = newLayout(32, 32)

const (
	llLength = iota
	llReserved
)

// LunList is the decoded reply. TotalEntries is the device-reported
// entry count before clamping, so it may exceed len(Luns).
type LunList struct {
	TotalEntries int
	Luns         []uint64
}

type ReportLunsCommand struct {
	dev *Device

	cdb        CDB12
	maxEntries uint32
	issued     bool
}

func (d *Device) ReportLuns() *ReportLunsCommand {
	c := &ReportLunsCommand{dev: d, maxEntries: 16}

	reportLunsCDB.mustPut(c.cdb[:], rlOpCode, opReportLuns)

	return c
}

// SelectReport sets which class of logical units the device reports.
func (c *ReportLunsCommand) SelectReport(value uint8) *ReportLunsCommand {
	reportLunsCDB.mustPut(c.cdb[:], rlSelectReport, uint64(value))
	return c
}

// MaxEntries sets how many LUN entries the reply buffer will hold.
// Defaults to 16.
func (c *ReportLunsCommand) MaxEntries(value uint32) *ReportLunsCommand {
	c.maxEntries = value
	return c
}

func (c *ReportLunsCommand) Control(value uint8) *ReportLunsCommand {
	reportLunsCDB.mustPut(c.cdb[:], rlControl, uint64(value))
	return c
}

func (c *ReportLunsCommand) Issue() (*LunList, error) {
	if c.issued {
		return nil, ErrCommandConsumed
	}

	c.issued = true

	if c.maxEntries > MaxLunEntries {
		return nil, &OutOfBoundsError{
			Field: "max entries",
			Limit: MaxLunEntries,
			Value: uint64(c.maxEntries),
		}
	}

	alloc := uint64(lunHeaderSize) + uint64(c.maxEntries)*lunEntrySize
	reportLunsCDB.mustPut(c.cdb[:], rlAllocationLength, alloc)

	c.dev.log.Debug("issuing report luns", "max", c.maxEntries)

	return Issue[*LunList](c.dev, &reportLunsRequest{
		cdb:      c.cdb,
		capacity: c.maxEntries,
	})
}

type reportLunsRequest struct {
	cdb      CDB12
	capacity uint32

	data *ParamBuffer
}

func (r *reportLunsRequest) Direction() DataDirection {
	return DirectionFromDevice
}

func (r *reportLunsRequest) CDB() []byte {
	return r.cdb[:]
}

func (r *reportLunsRequest) Data() *ParamBuffer {
	if r.data == nil {
		r.data = NewParamBuffer(lunHeaderSize, lunEntrySize, int(r.capacity))
	}

	return r.data
}

func (r *reportLunsRequest) DataSize() uint32 {
	return lunHeaderSize + r.capacity*lunEntrySize
}

func (r *reportLunsRequest) ProcessResult(res Result) (*LunList, error) {
	if err := res.Err(); err != nil {
		return nil, err
	}

	listLen := lunListHeader.get(res.Data.Header(), llLength)
	reported := int(listLen / lunEntrySize)

	n := res.Data.ElementCount(reported)

	luns := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		var lun uint64
		for _, b := range res.Data.Element(i) {
			lun = lun<<8 | uint64(b)
		}

		luns = append(luns, lun)
	}

	return &LunList{
		TotalEntries: reported,
		Luns:         luns,
	}, nil
}
