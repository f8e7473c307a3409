package scsiq

import "strings"

// INQUIRY (SPC-4): standard inquiry data only, no vital product data
// pages. The reply is a single fixed block, so the buffer is header-only.

const inquiryReplyLen = 36

// CDB layout: 6 bytes.
var inquiryCDB = newLayout(8, 7, 1, 8, 16, 8)

const (
	inqOpCode = iota
	inqReserved
	inqEVPD
	inqPageCode
	inqAllocationLength
	inqControl
)

// InquiryData is the decoded standard inquiry block.
type InquiryData struct {
	PeripheralDeviceType uint8
	Removable            bool
	Version              uint8
	Vendor               string
	Product              string
	Revision             string
}

type InquiryCommand struct {
	dev *Device

	cdb    CDB6
	issued bool
}

func (d *Device) Inquiry() *InquiryCommand {
	c := &InquiryCommand{dev: d}

	inquiryCDB.mustPut(c.cdb[:], inqOpCode, opInquiry)
	inquiryCDB.mustPut(c.cdb[:], inqAllocationLength, inquiryReplyLen)

	return c
}

func (c *InquiryCommand) Control(value uint8) *InquiryCommand {
	inquiryCDB.mustPut(c.cdb[:], inqControl, uint64(value))
	return c
}

func (c *InquiryCommand) Issue() (*InquiryData, error) {
	if c.issued {
		return nil, ErrCommandConsumed
	}

	c.issued = true

	c.dev.log.Debug("issuing inquiry")

	return Issue[*InquiryData](c.dev, &inquiryRequest{cdb: c.cdb})
}

type inquiryRequest struct {
	cdb  CDB6
	data *ParamBuffer
}

func (r *inquiryRequest) Direction() DataDirection {
	return DirectionFromDevice
}

func (r *inquiryRequest) CDB() []byte {
	return r.cdb[:]
}

func (r *inquiryRequest) Data() *ParamBuffer {
	if r.data == nil {
		r.data = NewParamBuffer(inquiryReplyLen, 0, 0)
	}

	return r.data
}

func (r *inquiryRequest) DataSize() uint32 {
	return inquiryReplyLen
}

func (r *inquiryRequest) ProcessResult(res Result) (*InquiryData, error) {
	if err := res.Err(); err != nil {
		return nil, err
	}

	b := res.Data.Header()

	return &InquiryData{
		PeripheralDeviceType: b[0] & 0x1f,
		Removable:            b[1]&0x80 != 0,
		Version:              b[2],
		Vendor:               asciiField(b[8:16]),
		Product:              asciiField(b[16:32]),
		Revision:             asciiField(b[32:36]),
	}, nil
}

// asciiField trims the space padding the standard mandates for the
// identification strings.
func asciiField(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
