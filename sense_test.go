package scsiq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSense(t *testing.T) {
	t.Run("fixed format", func(t *testing.T) {
		r := require.New(t)

		sd, ok := ParseSense(fixedSense(SenseIllegalRequest, 0x24, 0x00))
		r.True(ok)
		r.Equal(byte(0x70), sd.ResponseCode)
		r.Equal(SenseIllegalRequest, sd.Key)
		r.Equal(byte(0x24), sd.ASC)
		r.Equal(byte(0x00), sd.ASCQ)
	})

	t.Run("deferred fixed format", func(t *testing.T) {
		r := require.New(t)

		b := fixedSense(SenseMediumError, 0x11, 0x00)
		b[0] = 0x71

		sd, ok := ParseSense(b)
		r.True(ok)
		r.Equal(byte(0x71), sd.ResponseCode)
		r.Equal(SenseMediumError, sd.Key)
	})

	t.Run("descriptor format", func(t *testing.T) {
		r := require.New(t)

		b := []byte{0x72, byte(SenseNotReady), 0x04, 0x01, 0, 0, 0, 0}

		sd, ok := ParseSense(b)
		r.True(ok)
		r.Equal(SenseNotReady, sd.Key)
		r.Equal(byte(0x04), sd.ASC)
		r.Equal(byte(0x01), sd.ASCQ)
	})

	t.Run("valid bit is masked off", func(t *testing.T) {
		r := require.New(t)

		b := fixedSense(SenseNotReady, 0x04, 0x01)
		b[0] |= 0x80

		sd, ok := ParseSense(b)
		r.True(ok)
		r.Equal(byte(0x70), sd.ResponseCode)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		r := require.New(t)

		_, ok := ParseSense(nil)
		r.False(ok)

		_, ok = ParseSense([]byte{0x70, 0x00, 0x05})
		r.False(ok)

		_, ok = ParseSense([]byte{0x42})
		r.False(ok)
	})

	t.Run("key names", func(t *testing.T) {
		r := require.New(t)

		r.Equal("not ready", SenseNotReady.String())
		r.Equal("sense key 0xf", SenseKey(0xf).String())
	})
}
