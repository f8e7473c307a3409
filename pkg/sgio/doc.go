// Package sgio issues commands against a device node through the Linux
// SG_IO ioctl. It is the kernel-facing implementation of the scsiq
// Transport contract.
package sgio
