package scsiq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamBuffer(t *testing.T) {
	t.Run("sizes", func(t *testing.T) {
		r := require.New(t)

		p := NewParamBuffer(8, 8, 3)

		r.Equal(32, p.Len())
		r.Equal(3, p.Capacity())
		r.Len(p.Header(), 8)
		r.Len(p.Element(0), 8)
		r.Len(p.Bytes(), 32)
	})

	t.Run("zero shape", func(t *testing.T) {
		r := require.New(t)

		p := NewParamBuffer(0, 0, 0)

		r.Equal(0, p.Len())
		r.Empty(p.Header())
	})

	t.Run("elements are laid out after the header", func(t *testing.T) {
		r := require.New(t)

		p := NewParamBuffer(8, 8, 2)

		p.Element(1)[0] = 0x42

		r.Equal(byte(0x42), p.Bytes()[16])
	})

	t.Run("element views cannot reach the neighbors", func(t *testing.T) {
		r := require.New(t)

		p := NewParamBuffer(8, 8, 2)

		// appending to a view must reallocate, not spill over
		_ = append(p.Header(), 0xff)
		r.Equal(byte(0), p.Bytes()[8])

		_ = append(p.Element(0), 0xff)
		r.Equal(byte(0), p.Bytes()[16])
	})

	t.Run("out of range element panics", func(t *testing.T) {
		r := require.New(t)

		p := NewParamBuffer(8, 8, 2)

		r.Panics(func() { p.Element(2) })
		r.Panics(func() { p.Element(-1) })
	})

	t.Run("reported counts clamp to capacity", func(t *testing.T) {
		r := require.New(t)

		p := NewParamBuffer(8, 8, 3)

		r.Equal(0, p.ElementCount(-5))
		r.Equal(0, p.ElementCount(0))
		r.Equal(2, p.ElementCount(2))
		r.Equal(3, p.ElementCount(3))
		r.Equal(3, p.ElementCount(4))
		r.Equal(3, p.ElementCount(1<<30))
	})
}
