package linux

import "time"

// =============================================================================
// System Paths
// =============================================================================

// SysfsUSBPath is the base path for USB devices in sysfs.
const SysfsUSBPath = "/sys/bus/usb/devices"

// DevfsUSBPath is the base path for USB device nodes.
const DevfsUSBPath = "/dev/bus/usb"

// =============================================================================
// Transfer Limits
// =============================================================================

// MaxControlTransferSize is the largest data stage usbfs accepts for a
// synchronous control transfer.
const MaxControlTransferSize = 4096

// DefaultTimeout bounds a single control transfer when the context carries no
// earlier deadline.
const DefaultTimeout = 5 * time.Second

// =============================================================================
// HID Class Constants
// =============================================================================

// USBClassHID is the USB HID class code.
const USBClassHID = 0x03

// =============================================================================
// Netlink Constants
// =============================================================================

// ueventGroupKernel is the multicast group of kernel uevents (udev listens to
// group 2 for its own rebroadcasts).
const ueventGroupKernel = 1

// UEventBufferSize is the receive buffer size for one uevent datagram.
const UEventBufferSize = 8192

// eventQueueSize is the capacity of the Monitor event channel.
const eventQueueSize = 16
