package host

import (
	"context"
	"sync"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// Device is the session of one attached sensor.
//
// It owns its transport exclusively and serializes every measurement cycle
// and unit change behind a single mutex, so two cycles never interleave their
// frames on the wire. Distinct devices share nothing and run concurrently.
type Device struct {
	transport hal.ControlTransport
	name      string

	// Session state, guarded by mutex
	unit     Unit
	last     Reading
	hasLast  bool
	detached bool
	mutex    sync.Mutex

	// Continuous sensing, guarded by senseMu
	stop    chan struct{}
	senseWg sync.WaitGroup
	senseMu sync.Mutex
}

// newDevice creates a session around t with the unit set to Celsius.
func newDevice(t hal.ControlTransport) *Device {
	return &Device{
		transport: t,
		name:      t.String(),
		unit:      Celsius,
	}
}

// Name returns the name of the underlying transport.
func (d *Device) Name() string {
	return d.name
}

// Unit returns the selected temperature unit.
func (d *Device) Unit() Unit {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.unit
}

// SetUnit selects the temperature unit used by subsequent reads.
// Values other than Celsius and Fahrenheit are ignored.
func (d *Device) SetUnit(u Unit) {
	if u != Celsius && u != Fahrenheit {
		return
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.unit = u
}

// Last returns the most recent successful reading, if any.
func (d *Device) Last() (Reading, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.last, d.hasLast
}

func (d *Device) isDetached() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.detached
}

// Measure runs one measurement cycle and converts it with the selected unit.
func (d *Device) Measure(ctx context.Context) (Reading, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.measureLocked(ctx)
}

func (d *Device) measureLocked(ctx context.Context) (Reading, error) {
	if d.detached {
		return Reading{}, pkg.ErrNoDevice
	}

	raw, err := TriggerMeasurement(ctx, d.transport)
	if err != nil {
		return Reading{}, err
	}

	r := Convert(raw, d.unit)
	d.last = r
	d.hasLast = true
	return r, nil
}

// ReadAttribute measures and returns the formatted value of a.
//
// Reads never fail from the caller's point of view: any error is logged and
// the text "ERROR" is returned instead. Each read is independent, so a later
// successful read returns a value again.
func (d *Device) ReadAttribute(ctx context.Context, a Attribute) string {
	r, err := d.Measure(ctx)
	if err != nil {
		pkg.LogError(pkg.ComponentSession, "USB communication error",
			"device", d.name,
			"attribute", a.String(),
			"error", err)
		return ErrorText
	}
	return r.Format(a)
}

// WriteAttribute handles a write to either attribute. Only the first
// character of value is inspected: c or C selects Celsius, f or F selects
// Fahrenheit, anything else is ignored. It always returns nil.
func (d *Device) WriteAttribute(a Attribute, value string) error {
	u, ok := ParseUnit(value)
	if !ok {
		pkg.LogDebug(pkg.ComponentSession, "unit unchanged",
			"device", d.name,
			"attribute", a.String())
		return nil
	}

	d.SetUnit(u)
	pkg.LogDebug(pkg.ComponentSession, "unit selected",
		"device", d.name,
		"attribute", a.String(),
		"unit", u.String())
	return nil
}

// detach stops continuous sensing, waits for any cycle in flight, marks the
// session detached and closes the transport.
func (d *Device) detach() error {
	d.Halt()

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.detached {
		return nil
	}
	d.detached = true
	return d.transport.Close()
}
