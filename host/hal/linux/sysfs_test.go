//go:build linux

package linux

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/temperhum/host/hal"
)

// writeSysfs creates a fake sysfs tree under root. Keys are paths relative
// to root, values are attribute contents.
func writeSysfs(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content+"\n"), 0o644))
	}
}

// =============================================================================
// Scan Tests
// =============================================================================

func TestFindIn(t *testing.T) {
	root := t.TempDir()
	writeSysfs(t, root, map[string]string{
		// Two sensors, listed out of devfs order
		"1-4/busnum":                   "1",
		"1-4/devnum":                   "12",
		"1-4/idVendor":                 "1130",
		"1-4/idProduct":                "660c",
		"1-4/1-4:1.0/bInterfaceNumber": "00",
		"1-4/1-4:1.0/bInterfaceClass":  "03",
		"1-4/1-4:1.1/bInterfaceNumber": "01",
		"1-4/1-4:1.1/bInterfaceClass":  "03",
		"1-2/busnum":                   "1",
		"1-2/devnum":                   "3",
		"1-2/idVendor":                 "1130",
		"1-2/idProduct":                "660c",

		// Other device
		"1-3/busnum":    "1",
		"1-3/devnum":    "4",
		"1-3/idVendor":  "046d",
		"1-3/idProduct": "c52b",

		// Root hub, interface entry, unreadable device
		"usb1/busnum":              "1",
		"1-4:1.0/bInterfaceNumber": "00",
		"2-1/idVendor":             "1130",
	})

	devs, err := findIn(root, sensorID)
	require.NoError(t, err)
	require.Len(t, devs, 2)

	assert.Equal(t, "/dev/bus/usb/001/003", devs[0].DevfsPath)
	assert.Equal(t, filepath.Join(root, "1-2"), devs[0].SysfsPath)
	assert.Empty(t, devs[0].Interfaces)

	assert.Equal(t, "/dev/bus/usb/001/012", devs[1].DevfsPath)
	assert.Equal(t, uint8(1), devs[1].BusNum)
	assert.Equal(t, uint8(12), devs[1].DevNum)
	assert.Equal(t, sensorID, devs[1].ID)
	assert.Equal(t, []InterfaceInfo{{Number: 0, Class: USBClassHID}, {Number: 1, Class: USBClassHID}}, devs[1].Interfaces)
	assert.True(t, devs[1].HasHIDInterface(1))
	assert.False(t, devs[1].HasHIDInterface(2))
}

func TestFindIn_Missing(t *testing.T) {
	_, err := findIn(filepath.Join(t.TempDir(), "nope"), sensorID)
	assert.Error(t, err)

	devs, err := findIn(t.TempDir(), sensorID)
	require.NoError(t, err)
	assert.Empty(t, devs)
}

func TestParseUSBDevice_BadValues(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"bus overflow", map[string]string{"busnum": "300", "devnum": "1", "idVendor": "1130", "idProduct": "660c"}},
		{"bad vendor", map[string]string{"busnum": "1", "devnum": "1", "idVendor": "xyz", "idProduct": "660c"}},
		{"no product", map[string]string{"busnum": "1", "devnum": "1", "idVendor": "1130"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSysfs(t, dir, tt.files)
			_, err := parseUSBDevice(dir)
			assert.Error(t, err)
		})
	}
}

func TestAttrReader(t *testing.T) {
	dir := t.TempDir()
	writeSysfs(t, dir, map[string]string{
		"prefixed": "0x660c",
		"hex":      "660c\n",
		"dec":      " 42\n",
		"wide":     "300",
	})

	r := attrReader{dir: dir}
	assert.Equal(t, uint64(0x660c), r.uint("prefixed", 16, 16))
	assert.Equal(t, uint64(0x660c), r.uint("hex", 16, 16))
	assert.Equal(t, uint64(42), r.uint("dec", 10, 8))
	require.NoError(t, r.err)

	// A failed read sticks; later reads return zero.
	assert.Zero(t, r.uint("wide", 10, 8))
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "wide")
	assert.Zero(t, r.uint("hex", 16, 16))

	r = attrReader{dir: dir}
	assert.Zero(t, r.uint("missing", 16, 16))
	assert.ErrorIs(t, r.err, os.ErrNotExist)
}

// =============================================================================
// Path Tests
// =============================================================================

func TestDevfsPath(t *testing.T) {
	tests := []struct {
		busNum   uint8
		devNum   uint8
		expected string
	}{
		{1, 1, "/dev/bus/usb/001/001"},
		{1, 123, "/dev/bus/usb/001/123"},
		{12, 34, "/dev/bus/usb/012/034"},
		{255, 255, "/dev/bus/usb/255/255"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, devfsPath(tt.busNum, tt.devNum))
	}
}

func TestDeviceInfo_Interface(t *testing.T) {
	info := DeviceInfo{ID: hal.ID{Vendor: 0x1130, Product: 0x660c}}
	_, ok := info.Interface(0)
	assert.False(t, ok)
	assert.False(t, info.HasHIDInterface(0))

	info.Interfaces = []InterfaceInfo{{Number: 0, Class: USBClassHID}, {Number: 1, Class: 0xff}}
	iface, ok := info.Interface(1)
	require.True(t, ok)
	assert.Equal(t, InterfaceInfo{Number: 1, Class: 0xff}, iface)

	assert.True(t, info.HasHIDInterface(0))
	assert.False(t, info.HasHIDInterface(1), "vendor class")
	assert.False(t, info.HasHIDInterface(2), "missing")
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkDevfsPath(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = devfsPath(1, 123)
	}
}
