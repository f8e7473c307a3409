package scsiq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCapacity16(t *testing.T) {
	t.Run("decode", func(t *testing.T) {
		r := require.New(t)

		ft := &fakeTransport{respond: func(req Request) Result {
			data := req.Data()
			b := data.Header()

			readCapacityReply.mustPut(b, rcrLastLBA, 0x1fffff)
			readCapacityReply.mustPut(b, rcrBlockLength, 4096)

			return Result{Data: data}
		}}

		capacity, err := testDevice(ft).ReadCapacity16().Issue()
		r.NoError(err)

		r.Equal(uint64(0x1fffff), capacity.LastLBA)
		r.Equal(uint32(4096), capacity.BlockLength)
		r.Equal(uint64(0x200000*4096), capacity.SizeBytes())
	})

	t.Run("wire format", func(t *testing.T) {
		r := require.New(t)

		ft := &fakeTransport{}

		_, err := testDevice(ft).ReadCapacity16().Issue()
		r.NoError(err)

		req := ft.issued[0]

		r.Equal([]byte{
			0x9e, 0x10,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x20,
			0x00, 0x00,
		}, req.CDB())

		r.Equal(uint32(32), req.DataSize())
	})
}
