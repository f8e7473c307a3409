package scsiq

import "fmt"

// ParamBuffer owns the parameter data for one transaction: a fixed-size
// header followed by up to capacity fixed-size elements, stored in one
// contiguous allocation. The capacity must be chosen before the device
// reports how many elements actually exist, so decoding clamps to it.
//
// A buffer is created fresh per issued command and handed to the
// transport, which fills it; it is not reused across transactions.
type ParamBuffer struct {
	headerSize int
	elemSize   int
	capacity   int

	buf []byte
}

// NewParamBuffer allocates a zero-filled buffer for headerSize bytes of
// header plus capacity elements of elemSize bytes each. All sizes are in
// bytes. A zero shape (0, 0, 0) is valid and describes a command with no
// data phase.
func NewParamBuffer(headerSize, elemSize, capacity int) *ParamBuffer {
	if headerSize < 0 || elemSize < 0 || capacity < 0 {
		panic(fmt.Sprintf("negative buffer shape: %d/%d/%d", headerSize, elemSize, capacity))
	}

	return &ParamBuffer{
		headerSize: headerSize,
		elemSize:   elemSize,
		capacity:   capacity,
		buf:        make([]byte, headerSize+elemSize*capacity),
	}
}

// Len returns the total allocated size in bytes. This is the number of
// bytes the transport is told to transfer.
func (p *ParamBuffer) Len() int {
	return len(p.buf)
}

// Capacity returns the number of element slots the buffer was created with.
func (p *ParamBuffer) Capacity() int {
	return p.capacity
}

// Bytes returns the backing storage for the transport to fill.
func (p *ParamBuffer) Bytes() []byte {
	return p.buf
}

// Header returns the header region. The returned slice cannot grow into
// the element region.
func (p *ParamBuffer) Header() []byte {
	return p.buf[:p.headerSize:p.headerSize]
}

// Element returns the i'th element region. i must be less than the
// buffer's capacity; the reported element count from a device must be
// passed through ElementCount first.
func (p *ParamBuffer) Element(i int) []byte {
	if i < 0 || i >= p.capacity {
		panic(fmt.Sprintf("element %d out of range (capacity %d)", i, p.capacity))
	}

	off := p.headerSize + i*p.elemSize

	return p.buf[off : off+p.elemSize : off+p.elemSize]
}

// ElementCount clamps a device-reported element count to the allocated
// capacity. Every decode goes through this: a device claiming more
// elements than the buffer holds must not cause a read past the
// allocation.
func (p *ParamBuffer) ElementCount(reported int) int {
	if reported < 0 {
		return 0
	}

	if reported > p.capacity {
		return p.capacity
	}

	return reported
}
