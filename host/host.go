package host

import (
	"errors"
	"sort"
	"sync"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// Lifecycle receives attach and detach notifications from the host
// integration layer (hotplug monitor, device scan, test harness).
type Lifecycle interface {
	// OnAttach creates the session for a newly attached sensor. The session
	// takes ownership of t.
	OnAttach(t hal.ControlTransport) (*Device, error)

	// OnDetach destroys the session and closes its transport.
	OnDetach(d *Device) error
}

var _ Lifecycle = (*Host)(nil)

// Host tracks the sessions of all attached sensors.
type Host struct {
	devices map[string]*Device
	mutex   sync.RWMutex

	// Callbacks
	onDeviceAttach func(*Device)
	onDeviceDetach func(*Device)
}

// New creates a Host with no attached devices.
func New() *Host {
	return &Host{
		devices: make(map[string]*Device),
	}
}

// SetOnDeviceAttach sets the callback run after a device is attached.
func (h *Host) SetOnDeviceAttach(cb func(*Device)) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.onDeviceAttach = cb
}

// SetOnDeviceDetach sets the callback run after a device is detached.
func (h *Host) SetOnDeviceDetach(cb func(*Device)) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.onDeviceDetach = cb
}

// OnAttach creates a session for t, keyed by t.String(). Attaching a second
// transport with the same name fails with pkg.ErrAlreadyAttached and leaves
// t open.
func (h *Host) OnAttach(t hal.ControlTransport) (*Device, error) {
	if t == nil {
		return nil, pkg.ErrInvalidParameter
	}

	dev := newDevice(t)

	h.mutex.Lock()
	if _, ok := h.devices[dev.name]; ok {
		h.mutex.Unlock()
		return nil, pkg.ErrAlreadyAttached
	}
	h.devices[dev.name] = dev
	cb := h.onDeviceAttach
	h.mutex.Unlock()

	pkg.LogInfo(pkg.ComponentLifecycle, "attached", "device", dev.name)

	if cb != nil {
		cb(dev)
	}
	return dev, nil
}

// OnDetach removes d, waits for any measurement in flight and closes its
// transport. Subsequent reads on d return "ERROR".
func (h *Host) OnDetach(d *Device) error {
	if d == nil {
		return pkg.ErrInvalidParameter
	}

	h.mutex.Lock()
	if cur, ok := h.devices[d.name]; !ok || cur != d {
		h.mutex.Unlock()
		return pkg.ErrNotAttached
	}
	delete(h.devices, d.name)
	cb := h.onDeviceDetach
	h.mutex.Unlock()

	err := d.detach()
	if err != nil {
		pkg.LogWarn(pkg.ComponentLifecycle, "transport close failed",
			"device", d.name,
			"error", err)
	}
	pkg.LogInfo(pkg.ComponentLifecycle, "detached", "device", d.name)

	if cb != nil {
		cb(d)
	}
	return err
}

// Detach detaches the device with the given name.
func (h *Host) Detach(name string) error {
	d := h.Device(name)
	if d == nil {
		return pkg.ErrNotAttached
	}
	return h.OnDetach(d)
}

// Device returns the attached device with the given name, or nil.
func (h *Host) Device(name string) *Device {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.devices[name]
}

// Devices returns the attached devices ordered by name.
func (h *Host) Devices() []*Device {
	h.mutex.RLock()
	result := make([]*Device, 0, len(h.devices))
	for _, d := range h.devices {
		result = append(result, d)
	}
	h.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].name < result[j].name
	})
	return result
}

// Close detaches every device.
func (h *Host) Close() error {
	var errs []error
	for _, d := range h.Devices() {
		if err := h.OnDetach(d); err != nil && !errors.Is(err, pkg.ErrNotAttached) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
