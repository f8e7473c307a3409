package scsiq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutSizes(t *testing.T) {
	r := require.New(t)

	r.Equal(16, streamStatusCDB.Size())
	r.Equal(8, streamHeader.Size())
	r.Equal(8, streamDescriptor.Size())

	r.Equal(6, inquiryCDB.Size())
	r.Equal(16, readCapacityCDB.Size())
	r.Equal(32, readCapacityReply.Size())
	r.Equal(12, reportLunsCDB.Size())
	r.Equal(8, lunListHeader.Size())
	r.Equal(6, testUnitReadyCDB.Size())
}

func TestLayout(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		r := require.New(t)

		var buf CDB16

		fields := map[int]uint64{
			ssOpCode:           0x9e,
			ssReserved0:        0x5,
			ssServiceAction:    0x16,
			ssStartingStreamID: 0x1234,
			ssAllocationLength: 0xdeadbeef,
			ssControl:          0xa5,
		}

		for f, v := range fields {
			r.NoError(streamStatusCDB.put(buf[:], f, v))
		}

		for f, v := range fields {
			r.Equal(v, streamStatusCDB.get(buf[:], f), "field %d", f)
		}
	})

	t.Run("exact wire bytes", func(t *testing.T) {
		r := require.New(t)

		var buf CDB16

		r.NoError(streamStatusCDB.put(buf[:], ssOpCode, 0x9e))
		r.NoError(streamStatusCDB.put(buf[:], ssServiceAction, 0x16))
		r.NoError(streamStatusCDB.put(buf[:], ssStartingStreamID, 0x1234))
		r.NoError(streamStatusCDB.put(buf[:], ssAllocationLength, 0x18))
		r.NoError(streamStatusCDB.put(buf[:], ssControl, 0xaa))

		r.Equal(CDB16{
			0x9e, 0x16,
			0x00, 0x00,
			0x12, 0x34,
			0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x18,
			0x00, 0xaa,
		}, buf)
	})

	t.Run("sub-byte fields pack MSB first", func(t *testing.T) {
		r := require.New(t)

		var buf CDB16

		r.NoError(streamStatusCDB.put(buf[:], ssReserved0, 0x7))
		r.NoError(streamStatusCDB.put(buf[:], ssServiceAction, 0x16))

		r.Equal(byte(0xf6), buf[1])

		// rewriting one field leaves its neighbor alone
		r.NoError(streamStatusCDB.put(buf[:], ssReserved0, 0))
		r.Equal(byte(0x16), buf[1])
	})

	t.Run("over-wide values are rejected, not truncated", func(t *testing.T) {
		r := require.New(t)

		var buf CDB16

		err := streamStatusCDB.put(buf[:], ssReserved0, 8)
		r.Error(err)
		r.Contains(err.Error(), "out of bounds")

		// nothing was written
		r.Equal(CDB16{}, buf)

		r.NoError(streamStatusCDB.put(buf[:], ssReserved0, 7))
	})

	t.Run("64-bit fields take any value", func(t *testing.T) {
		r := require.New(t)

		var buf CDB16

		r.NoError(readCapacityCDB.put(buf[:], rcObsoleteLBA, ^uint64(0)))
		r.Equal(^uint64(0), readCapacityCDB.get(buf[:], rcObsoleteLBA))
	})

	t.Run("short buffer is rejected", func(t *testing.T) {
		r := require.New(t)

		var buf [4]byte

		r.Error(streamStatusCDB.put(buf[:], ssOpCode, 1))
	})

	t.Run("partial-byte layouts panic at definition", func(t *testing.T) {
		r := require.New(t)

		r.Panics(func() { newLayout(8, 3) })
		r.Panics(func() { newLayout(0) })
		r.Panics(func() { newLayout(65, 7) })
	})
}
