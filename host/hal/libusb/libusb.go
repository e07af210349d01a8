package libusb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// Context owns a libusb session. Transports opened from it must be closed
// before the Context.
type Context struct {
	ctx *gousb.Context
}

// NewContext starts a libusb session.
func NewContext() *Context {
	return &Context{ctx: gousb.NewContext()}
}

// Close ends the libusb session.
func (c *Context) Close() error {
	return c.ctx.Close()
}

// Open opens every attached device matching id and claims interface iface
// on each, detaching kernel drivers as needed. Devices that fail to open or
// claim are logged and skipped; the error is set only if none succeeded and
// at least one failed.
func (c *Context) Open(id hal.ID, iface uint8) ([]*Transport, error) {
	devs, err := c.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(id.Vendor) && desc.Product == gousb.ID(id.Product)
	})

	var errs []error
	if err != nil {
		errs = append(errs, mapError(err))
	}

	var transports []*Transport
	for _, dev := range devs {
		t, err := claim(dev, iface)
		if err != nil {
			pkg.LogWarn(pkg.ComponentHAL, "libusb device unusable",
				"device", dev.String(),
				"error", err)
			_ = dev.Close()
			errs = append(errs, err)
			continue
		}
		transports = append(transports, t)
	}

	if len(transports) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return transports, nil
}

// claim selects the active configuration of dev and claims iface.
func claim(dev *gousb.Device, iface uint8) (*Transport, error) {
	if err := dev.SetAutoDetach(true); err != nil {
		return nil, fmt.Errorf("auto detach: %w", mapError(err))
	}

	num, err := dev.ActiveConfigNum()
	if err != nil {
		return nil, fmt.Errorf("active config: %w", mapError(err))
	}
	cfg, err := dev.Config(num)
	if err != nil {
		return nil, fmt.Errorf("config %d: %w", num, mapError(err))
	}
	intf, err := cfg.Interface(int(iface), 0)
	if err != nil {
		_ = cfg.Close()
		return nil, fmt.Errorf("claim interface %d: %w", iface, mapError(err))
	}

	dev.ControlTimeout = hal.DefaultTimeout

	t := &Transport{
		dev:     dev,
		cfg:     cfg,
		intf:    intf,
		name:    fmt.Sprintf("libusb:%03d/%03d", dev.Desc.Bus, dev.Desc.Address),
		timeout: hal.DefaultTimeout,
	}
	pkg.LogDebug(pkg.ComponentHAL, "libusb device opened",
		"device", t.name,
		"interface", iface)
	return t, nil
}

// Transport implements hal.ControlTransport with libusb.
type Transport struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	name string

	timeout time.Duration
	closed  bool
	mutex   sync.Mutex
}

var _ hal.ControlTransport = (*Transport)(nil)

// String returns "libusb:BBB/DDD".
func (t *Transport) String() string {
	return t.name
}

// ControlTransfer performs a synchronous control transfer. A context
// deadline shorter than the default timeout bounds the transfer.
func (t *Transport) ControlTransfer(ctx context.Context, setup *hal.SetupPacket, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", pkg.ErrTimeout, err)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return 0, pkg.ErrClosed
	}

	timeout := t.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("%w: %w", pkg.ErrTimeout, context.DeadlineExceeded)
	}
	t.dev.ControlTimeout = timeout

	n, err := t.dev.Control(setup.RequestType, setup.Request, setup.Value, setup.Index, data)
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// Close releases the interface and closes the device. libusb reattaches
// the kernel driver detached at open.
func (t *Transport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return pkg.ErrClosed
	}
	t.closed = true

	t.intf.Close()
	var errs []error
	if err := t.cfg.Close(); err != nil {
		errs = append(errs, mapError(err))
	}
	if err := t.dev.Close(); err != nil {
		errs = append(errs, mapError(err))
	}

	pkg.LogDebug(pkg.ComponentHAL, "libusb device closed", "device", t.name)
	return errors.Join(errs...)
}

// mapError translates a libusb error code into the package-level error it
// represents, keeping the original in the chain.
func mapError(err error) error {
	var uerr gousb.Error
	if !errors.As(err, &uerr) {
		return err
	}

	var sentinel error
	switch uerr {
	case gousb.ErrorTimeout:
		sentinel = pkg.ErrTimeout
	case gousb.ErrorPipe:
		sentinel = pkg.ErrStall
	case gousb.ErrorNoDevice, gousb.ErrorNotFound:
		sentinel = pkg.ErrNoDevice
	case gousb.ErrorNoMem:
		sentinel = pkg.ErrNoMemory
	case gousb.ErrorInvalidParam:
		sentinel = pkg.ErrInvalidParameter
	case gousb.ErrorNotSupported:
		sentinel = pkg.ErrNotSupported
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
