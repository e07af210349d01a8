//go:build linux

package linux

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ardnew/temperhum/pkg"
)

// =============================================================================
// Kernel Structures
// =============================================================================

// ctrlTransfer represents a control transfer request.
// This must match the kernel's struct usbdevfs_ctrltransfer layout.
type ctrlTransfer struct {
	requestType uint8   // bmRequestType
	request     uint8   // bRequest
	value       uint16  // wValue
	index       uint16  // wIndex
	length      uint16  // wLength
	timeout     uint32  // Timeout in milliseconds
	data        uintptr // Data buffer pointer
}

// usbIoctl wraps a driver-level request on one interface.
// This must match the kernel's struct usbdevfs_ioctl layout.
type usbIoctl struct {
	ifno int32   // Interface number
	code int32   // Wrapped ioctl number
	data uintptr // Argument pointer
}

// getDriver receives the name of the driver bound to an interface.
// This must match the kernel's struct usbdevfs_getdriver layout.
type getDriver struct {
	ifno   uint32
	driver [256]byte
}

// =============================================================================
// Raw Syscall Wrappers
// =============================================================================

// openDevice opens a USB device file for read/write access.
func openDevice(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
}

// closeDevice closes a device file descriptor.
func closeDevice(fd int) error {
	return unix.Close(fd)
}

// ioctlRetval performs an ioctl syscall and returns the result value.
func ioctlRetval(fd int, req uintptr, arg unsafe.Pointer) (int, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return int(r), errno
	}
	return int(r), nil
}

// ioctlRaw performs an ioctl syscall.
func ioctlRaw(fd int, req uintptr, arg unsafe.Pointer) error {
	_, err := ioctlRetval(fd, req, arg)
	return err
}

// =============================================================================
// USBDEVFS Operations
// =============================================================================

// doControlTransfer performs a synchronous control transfer.
func doControlTransfer(fd int, reqType, req uint8, value, index uint16, data []byte, timeout uint32) (int, error) {
	ctrl := ctrlTransfer{
		requestType: reqType,
		request:     req,
		value:       value,
		index:       index,
		length:      uint16(len(data)),
		timeout:     timeout,
	}
	if len(data) > 0 {
		ctrl.data = uintptr(unsafe.Pointer(&data[0]))
	}

	n, err := ioctlRetval(fd, ioctlUsbdevfsControl, unsafe.Pointer(&ctrl))
	runtime.KeepAlive(data)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// claimInterface claims exclusive access to an interface.
func claimInterface(fd int, iface uint8) error {
	ifaceNum := uint32(iface)
	return ioctlRaw(fd, ioctlUsbdevfsClaimInterface, unsafe.Pointer(&ifaceNum))
}

// releaseInterface releases a previously claimed interface.
func releaseInterface(fd int, iface uint8) error {
	ifaceNum := uint32(iface)
	return ioctlRaw(fd, ioctlUsbdevfsReleaseInterface, unsafe.Pointer(&ifaceNum))
}

// driverName returns the name of the kernel driver bound to an interface.
// Fails with ENODATA if none is bound.
func driverName(fd int, iface uint8) (string, error) {
	gd := getDriver{ifno: uint32(iface)}
	if err := ioctlRaw(fd, ioctlUsbdevfsGetDriver, unsafe.Pointer(&gd)); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(gd.driver[:]), nil
}

// disconnectDriver unbinds the kernel driver from an interface.
func disconnectDriver(fd int, iface uint8) error {
	req := usbIoctl{ifno: int32(iface), code: int32(ioctlUsbdevfsDisconnect)}
	return ioctlRaw(fd, ioctlUsbdevfsIoctl, unsafe.Pointer(&req))
}

// connectDriver lets the kernel rebind a driver to an interface.
func connectDriver(fd int, iface uint8) error {
	req := usbIoctl{ifno: int32(iface), code: int32(ioctlUsbdevfsConnect)}
	return ioctlRaw(fd, ioctlUsbdevfsIoctl, unsafe.Pointer(&req))
}

// =============================================================================
// Error Helpers
// =============================================================================

// mapErrno translates a usbfs errno into the package-level error it
// represents, keeping the errno in the chain.
func mapErrno(err error) error {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return err
	}

	var sentinel error
	switch errno {
	case unix.ETIMEDOUT:
		sentinel = pkg.ErrTimeout
	case unix.EPIPE:
		sentinel = pkg.ErrStall
	case unix.ENODEV, unix.ESHUTDOWN, unix.ENOENT:
		sentinel = pkg.ErrNoDevice
	case unix.ENOMEM:
		sentinel = pkg.ErrNoMemory
	case unix.EINVAL:
		sentinel = pkg.ErrInvalidParameter
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// isNoDevice returns true if the error indicates the device was disconnected.
func isNoDevice(err error) bool {
	return errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ESHUTDOWN)
}

// isNoData returns true if the error indicates no driver is bound.
func isNoData(err error) bool {
	return errors.Is(err, unix.ENODATA)
}
