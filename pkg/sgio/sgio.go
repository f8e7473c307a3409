//go:build linux

package sgio

import (
	"runtime"
	"time"
	"unsafe"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/lab47/scsiq"
)

const (
	sgIO = 0x2285

	sgDxferNone    = -1
	sgDxferToDev   = -2
	sgDxferFromDev = -3

	senseBufLen = 32

	// driverSense in driver_status only flags that sense data
	// accompanies the SCSI status; it is not a driver fault.
	driverSense = 0x08

	// low nibble of driver_status; the high bits are suggestions.
	driverStatusMask = 0x0f

	defaultTimeout = 30 * time.Second
)

// transportFault reports whether the host adapter or the sg driver
// failed to carry out the transaction. A CHECK CONDITION with sense data
// is the device's verdict, not a transport fault, and must flow through
// to the status byte and sense buffer.
func transportFault(host, driver uint16) bool {
	return host != 0 || driver&driverStatusMask&^driverSense != 0
}

// sgIoHdr must match the kernel's struct sg_io_hdr layout.
type sgIoHdr struct {
	interfaceID    int32   // 'S' for SCSI generic
	dxferDirection int32   // data transfer direction
	cmdLen         uint8   // CDB length
	mxSbLen        uint8   // max sense buffer length
	iovecCount     uint16  // scatter gather elements (0 = none)
	dxferLen       uint32  // byte count of data transfer
	dxferp         uintptr // data transfer buffer
	cmdp           uintptr // CDB buffer
	sbp            uintptr // sense buffer
	timeout        uint32  // timeout in milliseconds
	flags          uint32  // request flags
	packID         int32   // user pack id
	usrPtr         uintptr // user context pointer
	status         uint8   // SCSI status byte out
	maskedStatus   uint8   // shifted, masked status
	msgStatus      uint8   // messaging level status
	sbLenWr        uint8   // sense bytes actually written
	hostStatus     uint16  // host adapter status
	driverStatus   uint16  // driver status
	resid          int32   // dxferLen minus actual transferred
	duration       uint32  // time taken, milliseconds
	info           uint32  // auxiliary info
}

// Device is an open SCSI generic device node.
type Device struct {
	log     hclog.Logger
	path    string
	fd      int
	timeout time.Duration
}

type Option func(d *Device)

// WithTimeout bounds how long the kernel lets a single command run.
func WithTimeout(d time.Duration) Option {
	return func(dev *Device) {
		dev.timeout = d
	}
}

// Open opens the device node at path for command traffic.
func Open(log hclog.Logger, path string, options ...Option) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	d := &Device{
		log:     log.Named("sgio"),
		path:    path,
		fd:      fd,
		timeout: defaultTimeout,
	}

	for _, opt := range options {
		opt(d)
	}

	return d, nil
}

func (d *Device) Close() error {
	return unix.Close(d.fd)
}

var _ scsiq.Transport = (*Device)(nil)

// Issue runs one transaction through the SG_IO ioctl. Failures to carry
// out the ioctl, and host/driver level failures, surface as the result's
// transport error; the device's own verdict goes in the status byte and
// sense buffer.
func (d *Device) Issue(req scsiq.Request) scsiq.Result {
	cdb := req.CDB()
	data := req.Data()
	sense := make([]byte, senseBufLen)

	hdr := sgIoHdr{
		interfaceID: 'S',
		cmdLen:      uint8(len(cdb)),
		mxSbLen:     senseBufLen,
		timeout:     uint32(d.timeout / time.Millisecond),
		cmdp:        uintptr(unsafe.Pointer(&cdb[0])),
		sbp:         uintptr(unsafe.Pointer(&sense[0])),
	}

	switch req.Direction() {
	case scsiq.DirectionFromDevice:
		hdr.dxferDirection = sgDxferFromDev
	case scsiq.DirectionToDevice:
		hdr.dxferDirection = sgDxferToDev
	default:
		hdr.dxferDirection = sgDxferNone
	}

	if n := req.DataSize(); n > 0 {
		buf := data.Bytes()
		hdr.dxferLen = n
		hdr.dxferp = uintptr(unsafe.Pointer(&buf[0]))
	}

	res := scsiq.Result{Data: data}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), sgIO, uintptr(unsafe.Pointer(&hdr)))

	runtime.KeepAlive(cdb)
	runtime.KeepAlive(sense)
	runtime.KeepAlive(data)

	if errno != 0 {
		res.TransportErr = errors.Wrapf(errno, "SG_IO ioctl on %s", d.path)
		return res
	}

	if transportFault(hdr.hostStatus, hdr.driverStatus) {
		res.TransportErr = errors.Errorf(
			"SG_IO transaction failed: host status %#x, driver status %#x",
			hdr.hostStatus, hdr.driverStatus)
		return res
	}

	res.Status = hdr.status
	if hdr.sbLenWr > 0 {
		res.Sense = sense[:hdr.sbLenWr]
	}

	d.log.Trace("transaction complete",
		"status", res.Status,
		"duration_ms", hdr.duration,
		"resid", hdr.resid)

	return res
}
