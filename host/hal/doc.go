// Package hal defines the transport contract between the temperhum driver
// and whatever moves control transfers to the sensor.
//
// The driver needs exactly two primitives: send a payload in a control write
// and receive a fixed-size response in a control read, both on endpoint 0.
// [ControlTransport] captures that, plus a name and a Close. Backends live in
// subpackages:
//
//   - linux:  usbfs ioctls on /dev/bus/usb, sysfs scanning, netlink hotplug
//   - hidraw: hidapi over hidraw nodes, leaving usbhid bound
//   - libusb: libusb via gousb
//   - sim:    an in-process emulator of the sensor for tests
//
// # Implementing a transport
//
//	type myTransport struct{ /* handle */ }
//
//	func (t *myTransport) String() string { return "my:0" }
//
//	func (t *myTransport) ControlTransfer(ctx context.Context, setup *hal.SetupPacket, data []byte) (int, error) {
//	    // issue setup + data stage, return bytes moved
//	}
//
//	func (t *myTransport) Close() error { return nil }
//
// Transports report failures with the sentinels in
// [github.com/ardnew/temperhum/pkg] (ErrTimeout, ErrNoDevice, ErrStall,
// ErrNoMemory) so the driver can classify them.
package hal
