//go:build linux

package linux

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// =============================================================================
// ControlTransport Implementation
// =============================================================================

// Transport implements hal.ControlTransport over a usbfs device node.
type Transport struct {
	path  string // /dev/bus/usb/BBB/DDD
	fd    int
	iface uint8

	// Kernel driver unbound at open, rebound at close
	driver string

	// Transfer timeout ceiling
	timeout time.Duration

	closed bool
	mutex  sync.Mutex
}

var _ hal.ControlTransport = (*Transport)(nil)

// Option configures a Transport.
type Option func(*Transport)

// WithTimeout sets the per-transfer timeout ceiling. A context deadline
// shorter than d takes precedence.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// Open opens the usbfs node at path and claims interface iface, unbinding
// any kernel driver (usually usbhid) first.
func Open(path string, iface uint8, opts ...Option) (*Transport, error) {
	fd, err := openDevice(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, mapErrno(err))
	}

	t := &Transport{
		path:    path,
		fd:      fd,
		iface:   iface,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.claim(); err != nil {
		_ = closeDevice(fd)
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "usbfs device opened",
		"path", path,
		"interface", iface,
		"driver", t.driver)
	return t, nil
}

// claim detaches the bound kernel driver and claims the interface.
func (t *Transport) claim() error {
	name, err := driverName(t.fd, t.iface)
	switch {
	case err == nil:
		if err := disconnectDriver(t.fd, t.iface); err != nil {
			return fmt.Errorf("detach driver %s: %w", name, mapErrno(err))
		}
		t.driver = name
	case isNoData(err):
		// No driver bound
	default:
		return fmt.Errorf("query driver: %w", mapErrno(err))
	}

	if err := claimInterface(t.fd, t.iface); err != nil {
		t.reattach()
		return fmt.Errorf("claim interface %d: %w", t.iface, mapErrno(err))
	}
	return nil
}

// reattach rebinds the kernel driver detached by claim, if any.
func (t *Transport) reattach() {
	if t.driver == "" {
		return
	}
	if err := connectDriver(t.fd, t.iface); err != nil && !isNoDevice(err) {
		pkg.LogWarn(pkg.ComponentHAL, "failed to reattach kernel driver",
			"path", t.path,
			"driver", t.driver,
			"error", err)
	}
	t.driver = ""
}

// String returns the devfs path of the device.
func (t *Transport) String() string {
	return t.path
}

// ControlTransfer performs a synchronous control transfer on endpoint 0.
func (t *Transport) ControlTransfer(ctx context.Context, setup *hal.SetupPacket, data []byte) (int, error) {
	if len(data) > MaxControlTransferSize {
		return 0, fmt.Errorf("%w: %d byte data stage", pkg.ErrInvalidParameter, len(data))
	}

	timeout := t.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", pkg.ErrTimeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("%w: %w", pkg.ErrTimeout, context.DeadlineExceeded)
	}

	// usbfs treats a zero timeout as infinite.
	ms := uint32(timeout.Milliseconds())
	if ms == 0 {
		ms = 1
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return 0, pkg.ErrClosed
	}

	n, err := doControlTransfer(t.fd,
		setup.RequestType,
		setup.Request,
		setup.Value,
		setup.Index,
		data,
		ms,
	)
	if err != nil {
		return 0, mapErrno(err)
	}
	return n, nil
}

// Close releases the interface, rebinds the kernel driver and closes the
// device node. Errors from an unplugged device are ignored.
func (t *Transport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return pkg.ErrClosed
	}
	t.closed = true

	var errs []error
	if err := releaseInterface(t.fd, t.iface); err != nil && !isNoDevice(err) {
		errs = append(errs, fmt.Errorf("release interface %d: %w", t.iface, mapErrno(err)))
	}
	t.reattach()
	if err := closeDevice(t.fd); err != nil {
		errs = append(errs, err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "usbfs device closed", "path", t.path)
	return errors.Join(errs...)
}
