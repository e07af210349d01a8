package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/ardnew/temperhum/pkg"
)

var _ physic.SenseEnv = (*Device)(nil)

// Env fills e with the reading in physical units. Temperature is always
// taken in Celsius from the raw code, independent of the selected unit.
func (r Reading) Env(e *physic.Env) {
	c := TemperatureCentiCelsius(int32(r.Raw.SOt))
	e.Temperature = physic.ZeroCelsius + physic.Temperature(c)*physic.Kelvin/100
	e.Humidity = physic.RelativeHumidity(r.Humidity * int64(physic.PercentRH) / 10000)
	e.Pressure = 0
}

// String implements conn.Resource.
func (d *Device) String() string {
	return "temperhum(" + d.name + ")"
}

// Sense runs one measurement cycle and stores it in e. Implements
// physic.SenseEnv.
func (d *Device) Sense(e *physic.Env) error {
	r, err := d.Measure(context.Background())
	if err != nil {
		return err
	}
	r.Env(e)
	return nil
}

// Precision reports the resolution of the reported values.
func (d *Device) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 100
	e.Humidity = physic.PercentRH / 100
	e.Pressure = 0
}

// SenseContinuous measures every interval until Halt is called or the device
// is detached. Failed cycles are logged and skipped. The interval must be at
// least SettleTime, and a detached device returns pkg.ErrNoDevice. A previous
// continuous sense is stopped first.
func (d *Device) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < SettleTime {
		return nil, fmt.Errorf("%w: interval %v shorter than settle time %v",
			pkg.ErrInvalidParameter, interval, SettleTime)
	}
	if d.isDetached() {
		return nil, pkg.ErrNoDevice
	}

	d.senseMu.Lock()
	defer d.senseMu.Unlock()
	d.haltLocked()

	stop := make(chan struct{})
	d.stop = stop
	out := make(chan physic.Env)

	d.senseWg.Add(1)
	go func() {
		defer d.senseWg.Done()
		defer close(out)

		tick := time.NewTicker(interval)
		defer tick.Stop()

		for {
			var e physic.Env
			err := d.Sense(&e)
			if errors.Is(err, pkg.ErrNoDevice) {
				return
			}
			if err != nil {
				pkg.LogWarn(pkg.ComponentSession, "continuous sense failed",
					"device", d.name,
					"error", err)
			} else {
				select {
				case out <- e:
				case <-stop:
					return
				}
			}

			select {
			case <-tick.C:
			case <-stop:
				return
			}
		}
	}()

	return out, nil
}

// Halt stops a running SenseContinuous. Implements conn.Resource.
func (d *Device) Halt() error {
	d.senseMu.Lock()
	defer d.senseMu.Unlock()
	d.haltLocked()
	return nil
}

func (d *Device) haltLocked() {
	if d.stop == nil {
		return
	}
	close(d.stop)
	d.stop = nil
	d.senseWg.Wait()
}
