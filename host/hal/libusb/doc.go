// Package libusb provides a control transport backed by libusb through
// github.com/google/gousb. It requires cgo and libusb-1.0.
//
// It is the portable alternative to the usbfs transport: the same requests
// reach endpoint 0 unchanged, and libusb takes care of detaching and
// reattaching the kernel driver.
//
//	c := libusb.NewContext()
//	defer c.Close()
//
//	transports, err := c.Open(host.SensorID, host.SensorInterface)
package libusb
