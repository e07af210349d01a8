// Package host implements the host side of the TEMPerHUM USB
// temperature/humidity sensor driver.
//
// It is transport-agnostic and talks to the sensor through the
// [hal.ControlTransport] interface defined in
// github.com/ardnew/temperhum/host/hal.
//
// # Architecture
//
//   - TriggerMeasurement runs the command sequence of one measurement
//   - Convert and its helpers turn raw codes into fixed-point values
//   - Device is the session of one attached sensor
//   - Host creates and destroys sessions on attach and detach
//
// # Measurement Cycle
//
// A cycle is ten control writes to interface 1 (arm, mode, seven clock
// frames, trigger), each an 8-byte frame padded to 32 bytes, followed by a
// fixed 400 ms settle wait and one 4-byte control read. The first transfer
// that fails or moves the wrong number of bytes aborts the cycle with a
// [*ProtocolError]. Nothing is retried.
//
// A done context stops a cycle from starting. Once the arm frame is sent,
// cancellation is ignored and the cycle runs to completion or to its first
// transport failure, so the sensor is never left half armed.
//
// # Fixed-Point Values
//
// Temperature is kept in hundredths of a degree and humidity in
// ten-thousandths of a percent. Both are rendered with integer division and
// remainder, without zero padding, so 5.05 °C reads "5.5".
//
// # Attributes
//
// Each device publishes two read/write text values, "t" and "rh":
//
//	h := host.New()
//	dev, err := h.OnAttach(transport)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(dev.ReadAttribute(ctx, host.AttributeTemperature)) // "21.37"
//	dev.WriteAttribute(host.AttributeTemperature, "F")
//	fmt.Println(dev.ReadAttribute(ctx, host.AttributeTemperature)) // "70.46"
//
// A failed read returns "ERROR". A write never fails.
//
// A Device also implements periph's physic.SenseEnv for callers that prefer
// physical units.
package host
