// Package sim provides an in-process TEMPerHUM emulator that implements
// [hal.ControlTransport].
//
// The emulator follows the sensor's command sequence (arm, mode, seven
// clock frames, trigger) and only answers the result read after a complete
// sequence. Out-of-order frames are counted as violations, and transfers
// that start while another is in progress are counted as overlaps, which
// makes interleaved measurement cycles visible to tests.
//
// # Usage
//
//	s := sim.New("sim0", sim.WithReading(4520, 2200))
//	h := host.New()
//	dev, _ := h.OnAttach(s)
//	fmt.Println(dev.ReadAttribute(ctx, host.AttributeTemperature)) // "5.10"
//
// # Fault Injection
//
// InjectFault replaces the outcome of a given transfer, counted from zero:
//
//	s.InjectFault(1, sim.Fault{Length: 31}) // short write of the mode frame
//	s.InjectFault(10, sim.Fault{Err: pkg.ErrTimeout})
//
// The example daemon uses this package for its "sim" backend.
package sim
