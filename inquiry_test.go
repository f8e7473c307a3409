package scsiq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInquiry(t *testing.T) {
	t.Run("decode", func(t *testing.T) {
		r := require.New(t)

		ft := &fakeTransport{respond: func(req Request) Result {
			data := req.Data()
			b := data.Header()

			b[0] = 0x00 // direct access block device
			b[1] = 0x80 // removable
			b[2] = 0x06 // SPC-4

			copy(b[8:16], "LAB47   ")
			copy(b[16:32], "VDISK           ")
			copy(b[32:36], "1.2 ")

			return Result{Data: data}
		}}

		inq, err := testDevice(ft).Inquiry().Issue()
		r.NoError(err)

		r.Equal(uint8(0), inq.PeripheralDeviceType)
		r.True(inq.Removable)
		r.Equal(uint8(6), inq.Version)
		r.Equal("LAB47", inq.Vendor)
		r.Equal("VDISK", inq.Product)
		r.Equal("1.2", inq.Revision)
	})

	t.Run("wire format", func(t *testing.T) {
		r := require.New(t)

		ft := &fakeTransport{}

		_, err := testDevice(ft).Inquiry().Control(0x04).Issue()
		r.NoError(err)

		r.Len(ft.issued, 1)
		req := ft.issued[0]

		r.Equal([]byte{0x12, 0x00, 0x00, 0x00, 0x24, 0x04}, req.CDB())
		r.Equal(uint32(36), req.DataSize())
		r.Equal(36, req.Data().Len())
	})
}
