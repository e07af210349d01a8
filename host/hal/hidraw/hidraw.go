package hidraw

import (
	"context"
	"fmt"
	"sync"

	"github.com/sstallion/go-hid"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// device is the subset of *hid.Device used by Transport.
type device interface {
	Write(p []byte) (int, error)
	GetFeatureReport(p []byte) (int, error)
	SendFeatureReport(p []byte) (int, error)
	Close() error
}

var _ device = (*hid.Device)(nil)

var initOnce sync.Once

// initHID initializes hidapi once per process.
func initHID() error {
	var err error
	initOnce.Do(func() {
		err = hid.Init()
	})
	return err
}

// Exit releases hidapi resources. No Transport may be used afterwards.
func Exit() error {
	return hid.Exit()
}

// DeviceInfo describes one HID interface of a matching device.
type DeviceInfo struct {
	Path      string // hidraw node, e.g. /dev/hidraw3
	Interface int
	Product   string
	Serial    string
}

// Find lists the HID interfaces of devices matching id.
func Find(id hal.ID) ([]DeviceInfo, error) {
	if err := initHID(); err != nil {
		return nil, err
	}

	var infos []DeviceInfo
	err := hid.Enumerate(id.Vendor, id.Product, func(info *hid.DeviceInfo) error {
		infos = append(infos, DeviceInfo{
			Path:      info.Path,
			Interface: info.InterfaceNbr,
			Product:   info.ProductStr,
			Serial:    info.SerialNbr,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Transport implements hal.ControlTransport on a hidraw node.
//
// Class SET_REPORT and GET_REPORT requests are carried by the hidraw report
// calls: an output SET_REPORT becomes an output report write, feature
// requests use the feature report ioctls. Requests must address the
// interface the node belongs to. Anything else is rejected with
// pkg.ErrNotSupported.
type Transport struct {
	dev   device
	path  string
	iface uint16

	closed bool
	mutex  sync.Mutex
}

var _ hal.ControlTransport = (*Transport)(nil)

// Open opens the hidraw node at path, which must belong to interface iface.
func Open(path string, iface uint8) (*Transport, error) {
	if err := initHID(); err != nil {
		return nil, err
	}

	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "hidraw device opened",
		"path", path,
		"interface", iface)
	return newTransport(dev, path, iface), nil
}

func newTransport(dev device, path string, iface uint8) *Transport {
	return &Transport{
		dev:   dev,
		path:  path,
		iface: uint16(iface),
	}
}

// String returns the hidraw node path.
func (t *Transport) String() string {
	return t.path
}

// ControlTransfer maps a HID class request onto hidraw report calls.
// hidapi calls block without a deadline, so ctx is only checked on entry.
func (t *Transport) ControlTransfer(ctx context.Context, setup *hal.SetupPacket, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", pkg.ErrTimeout, err)
	}
	if !setup.IsClass() {
		return 0, fmt.Errorf("%w: %v", pkg.ErrNotSupported, setup)
	}
	if setup.Index != t.iface {
		return 0, fmt.Errorf("%w: interface %d on %s", pkg.ErrInvalidParameter, setup.Index, t.path)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return 0, pkg.ErrClosed
	}

	// The report ID travels in the first byte of every hidraw buffer.
	buf := make([]byte, len(data)+1)
	buf[0] = setup.ReportID()

	var (
		n   int
		err error
	)
	switch {
	case !setup.IsIn() && setup.Request == hal.RequestSetReport && setup.ReportType() == hal.ReportTypeOutput:
		copy(buf[1:], data)
		n, err = t.dev.Write(buf)
	case !setup.IsIn() && setup.Request == hal.RequestSetReport && setup.ReportType() == hal.ReportTypeFeature:
		copy(buf[1:], data)
		n, err = t.dev.SendFeatureReport(buf)
	case setup.IsIn() && setup.Request == hal.RequestGetReport && setup.ReportType() == hal.ReportTypeFeature:
		n, err = t.dev.GetFeatureReport(buf)
		if err == nil && n > 1 {
			copy(data, buf[1:n])
		}
	default:
		return 0, fmt.Errorf("%w: %v", pkg.ErrNotSupported, setup)
	}
	if err != nil {
		return 0, fmt.Errorf("hidraw %s: %w", t.path, err)
	}

	// Counts include the report ID byte.
	if n > 0 {
		n--
	}
	return n, nil
}

// Close closes the hidraw node.
func (t *Transport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return pkg.ErrClosed
	}
	t.closed = true

	pkg.LogDebug(pkg.ComponentHAL, "hidraw device closed", "path", t.path)
	return t.dev.Close()
}
