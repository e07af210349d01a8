// Package linux provides a usbfs control transport and device discovery for
// Linux.
//
// [Transport] talks to a device node under /dev/bus/usb/ with synchronous
// USBDEVFS_CONTROL ioctls. [Find] scans sysfs (/sys/bus/usb/devices/) for
// devices with a given vendor and product ID and lists their interfaces.
// [Monitor] reports their arrival, driver binding and removal from the
// kernel uevent netlink socket. No cgo is involved.
//
// # Requirements
//
// The user running the application must have read/write access to the
// device nodes in /dev/bus/usb/. Either run as root or install a udev rule
// granting access to a group, for example:
//
//	SUBSYSTEM=="usb", ATTR{idVendor}=="1130", ATTR{idProduct}=="660c", MODE="0660", GROUP="plugdev"
//
// # Interface Claiming
//
// Open unbinds the kernel driver (usually usbhid) from the requested
// interface, claims it, and Close releases it and lets the kernel bind the
// driver again.
//
// # Errors
//
// usbfs errno values are mapped onto the errors in package pkg: ETIMEDOUT
// to ErrTimeout, EPIPE to ErrStall, ENODEV and ESHUTDOWN to ErrNoDevice,
// ENOMEM to ErrNoMemory. The original errno remains in the error chain.
package linux
