package scsiq

// TEST UNIT READY (SPC-4): no data phase in either direction. The result
// is only the error state, which makes it the degenerate case of the
// command contract: a zero-shape buffer and a zero transfer size.

// CDB layout: 6 bytes.
var testUnitReadyCDB = newLayout(8, 32, 8)

const (
	turOpCode = iota
	turReserved
	turControl
)

type TestUnitReadyCommand struct {
	dev *Device

	cdb    CDB6
	issued bool
}

func (d *Device) TestUnitReady() *TestUnitReadyCommand {
	c := &TestUnitReadyCommand{dev: d}

	testUnitReadyCDB.mustPut(c.cdb[:], turOpCode, opTestUnitReady)

	return c
}

func (c *TestUnitReadyCommand) Control(value uint8) *TestUnitReadyCommand {
	testUnitReadyCDB.mustPut(c.cdb[:], turControl, uint64(value))
	return c
}

// Issue returns nil when the device is ready to accept medium access
// commands, and a *SenseError describing why when it is not.
func (c *TestUnitReadyCommand) Issue() error {
	if c.issued {
		return ErrCommandConsumed
	}

	c.issued = true

	c.dev.log.Debug("issuing test unit ready")

	_, err := Issue[struct{}](c.dev, &testUnitReadyRequest{cdb: c.cdb})
	return err
}

type testUnitReadyRequest struct {
	cdb  CDB6
	data *ParamBuffer
}

func (r *testUnitReadyRequest) Direction() DataDirection {
	return DirectionNone
}

func (r *testUnitReadyRequest) CDB() []byte {
	return r.cdb[:]
}

func (r *testUnitReadyRequest) Data() *ParamBuffer {
	if r.data == nil {
		r.data = NewParamBuffer(0, 0, 0)
	}

	return r.data
}

func (r *testUnitReadyRequest) DataSize() uint32 {
	return 0
}

func (r *testUnitReadyRequest) ProcessResult(res Result) (struct{}, error) {
	return struct{}{}, res.Err()
}
