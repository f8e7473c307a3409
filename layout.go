package scsiq

import (
	"fmt"

	"github.com/pkg/errors"
)

// layout describes a fixed-size binary structure as an ordered run of
// bit-width fields, packed MSB first with multi-byte fields stored
// big-endian. Field offsets are computed once at definition time so call
// sites only deal in field indices and values, never masks.
type layout struct {
	widths  []uint
	offsets []uint
	size    int
}

// newLayout panics unless the widths sum to a whole number of bytes.
// Layouts are package-level definitions, so a bad one is a programming
// error, not a runtime condition.
func newLayout(widths ...uint) layout {
	var total uint

	offsets := make([]uint, len(widths))

	for i, w := range widths {
		if w == 0 || w > 64 {
			panic(fmt.Sprintf("field %d has unusable width %d", i, w))
		}

		offsets[i] = total
		total += w
	}

	if total%8 != 0 {
		panic(fmt.Sprintf("layout is %d bits, not a whole number of bytes", total))
	}

	return layout{
		widths:  widths,
		offsets: offsets,
		size:    int(total / 8),
	}
}

// Size returns the serialized size of the layout in bytes.
func (l layout) Size() int {
	return l.size
}

// put writes value into field f of buf. A value wider than the declared
// field width is rejected rather than truncated, so a bad value can never
// corrupt adjacent fields on the wire.
func (l layout) put(buf []byte, f int, value uint64) error {
	if len(buf) < l.size {
		return errors.Errorf("buffer is %d bytes, layout needs %d", len(buf), l.size)
	}

	w := l.widths[f]
	if w < 64 && value >= 1<<w {
		return errors.Errorf(
			"value is out of bounds. The maximum possible value is %d, but %d was provided.",
			uint64(1)<<w-1, value)
	}

	off := l.offsets[f]

	for j := uint(0); j < w; j++ {
		pos := off + j
		mask := byte(1) << (7 - pos%8)

		if value>>(w-1-j)&1 == 1 {
			buf[pos/8] |= mask
		} else {
			buf[pos/8] &^= mask
		}
	}

	return nil
}

// mustPut is put for setters whose Go argument type already has exactly
// the field's width, where overflow is impossible.
func (l layout) mustPut(buf []byte, f int, value uint64) {
	if err := l.put(buf, f, value); err != nil {
		panic(err)
	}
}

// get reads field f back out of buf. It is the exact inverse of put.
func (l layout) get(buf []byte, f int) uint64 {
	w := l.widths[f]
	off := l.offsets[f]

	var value uint64

	for j := uint(0); j < w; j++ {
		pos := off + j
		value <<= 1
		value |= uint64(buf[pos/8] >> (7 - pos%8) & 1)
	}

	return value
}
