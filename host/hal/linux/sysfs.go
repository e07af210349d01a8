//go:build linux

package linux

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ardnew/temperhum/host/hal"
)

// =============================================================================
// USB Device Information
// =============================================================================

// DeviceInfo describes a USB device discovered via sysfs or a uevent.
type DeviceInfo struct {
	SysfsPath string // Path in /sys/bus/usb/devices
	DevfsPath string // Path in /dev/bus/usb
	BusNum    uint8
	DevNum    uint8
	ID        hal.ID

	// Interfaces of the active configuration, empty until the device is
	// configured and for remove events
	Interfaces []InterfaceInfo
}

// InterfaceInfo holds information about a USB interface.
type InterfaceInfo struct {
	Number uint8 // bInterfaceNumber
	Class  uint8 // bInterfaceClass
}

// Interface returns interface number n of the active configuration.
func (d *DeviceInfo) Interface(n uint8) (InterfaceInfo, bool) {
	for _, iface := range d.Interfaces {
		if iface.Number == n {
			return iface, true
		}
	}
	return InterfaceInfo{}, false
}

// HasHIDInterface returns true if interface number n exists and is of the
// HID class.
func (d *DeviceInfo) HasHIDInterface(n uint8) bool {
	iface, ok := d.Interface(n)
	return ok && iface.Class == USBClassHID
}

// =============================================================================
// Sysfs Parsing
// =============================================================================

// Find returns the attached devices matching id, ordered by devfs path.
func Find(id hal.ID) ([]DeviceInfo, error) {
	return findIn(SysfsUSBPath, id)
}

func findIn(root string, id hal.ID) ([]DeviceInfo, error) {
	devices, err := scanUSBDevices(root)
	if err != nil {
		return nil, err
	}

	var matched []DeviceInfo
	for _, dev := range devices {
		if dev.ID == id {
			matched = append(matched, dev)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].DevfsPath < matched[j].DevfsPath
	})
	return matched, nil
}

// scanUSBDevices scans a sysfs USB device directory.
func scanUSBDevices(root string) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo

	for _, entry := range entries {
		name := entry.Name()

		// USB devices have names like "1-1", "1-1.2", etc.
		// Skip root hubs (usb1) and interfaces (1-1:1.0).
		if strings.HasPrefix(name, "usb") {
			continue
		}
		if strings.Contains(name, ":") {
			continue
		}

		info, err := parseUSBDevice(filepath.Join(root, name))
		if err != nil {
			continue // Skip devices we can't parse
		}

		devices = append(devices, info)
	}

	return devices, nil
}

// parseUSBDevice reads the identity and address of the device directory
// at sysfsPath. All four attributes are required.
func parseUSBDevice(sysfsPath string) (DeviceInfo, error) {
	r := attrReader{dir: sysfsPath}
	info := DeviceInfo{
		SysfsPath: sysfsPath,
		BusNum:    uint8(r.uint("busnum", 10, 8)),
		DevNum:    uint8(r.uint("devnum", 10, 8)),
		ID: hal.ID{
			Vendor:  uint16(r.uint("idVendor", 16, 16)),
			Product: uint16(r.uint("idProduct", 16, 16)),
		},
	}
	if r.err != nil {
		return DeviceInfo{}, r.err
	}

	info.DevfsPath = devfsPath(info.BusNum, info.DevNum)
	info.Interfaces = scanInterfaces(sysfsPath)
	return info, nil
}

// scanInterfaces scans sysfs for interfaces of a device.
func scanInterfaces(devicePath string) []InterfaceInfo {
	entries, err := os.ReadDir(devicePath)
	if err != nil {
		return nil
	}

	var interfaces []InterfaceInfo
	deviceName := filepath.Base(devicePath)

	for _, entry := range entries {
		name := entry.Name()

		// Interface entries have names like "1-1:1.0"
		// Format: <device>:<config>.<interface>
		if !strings.HasPrefix(name, deviceName+":") {
			continue
		}

		iface, err := parseInterface(filepath.Join(devicePath, name))
		if err != nil {
			continue
		}

		interfaces = append(interfaces, iface)
	}

	return interfaces
}

// parseInterface reads an interface directory. bInterfaceClass is
// optional and left zero when unreadable.
func parseInterface(sysfsPath string) (InterfaceInfo, error) {
	r := attrReader{dir: sysfsPath}
	num := uint8(r.uint("bInterfaceNumber", 16, 8))
	if r.err != nil {
		return InterfaceInfo{}, r.err
	}
	class := uint8(r.uint("bInterfaceClass", 16, 8))
	return InterfaceInfo{Number: num, Class: class}, nil
}

// =============================================================================
// Attribute Reader
// =============================================================================

// attrReader reads numeric attribute files of one sysfs directory and
// keeps the first error, so a run of reads needs a single check.
type attrReader struct {
	dir string
	err error
}

// uint parses the attribute name in the given base. Hexadecimal values may
// carry a 0x prefix. Returns 0 once any read has failed.
func (r *attrReader) uint(name string, base, bitSize int) uint64 {
	if r.err != nil {
		return 0
	}
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		r.err = err
		return 0
	}
	s := strings.TrimSpace(string(data))
	if base == 16 {
		s = strings.TrimPrefix(s, "0x")
	}
	v, err := strconv.ParseUint(s, base, bitSize)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", name, err)
		return 0
	}
	return v
}

// devfsPath returns the usbfs node /dev/bus/usb/BBB/DDD of a device.
func devfsPath(busNum, devNum uint8) string {
	return fmt.Sprintf("%s/%03d/%03d", DevfsUSBPath, busNum, devNum)
}
