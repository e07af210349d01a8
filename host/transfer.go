package host

import (
	"context"
	"fmt"
	"time"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// sleep waits out the settle time. Replaced in tests.
var sleep = time.Sleep

// RawReading holds the two raw sensor codes of one measurement.
type RawReading struct {
	SOt  uint16 // Temperature code, 14 significant bits
	SOrh uint16 // Humidity code, 12 significant bits
}

// decodeRaw splits a 4-byte response into big-endian codes.
func decodeRaw(b []byte) RawReading {
	return RawReading{
		SOt:  uint16(b[0])<<8 | uint16(b[1]),
		SOrh: uint16(b[2])<<8 | uint16(b[3]),
	}
}

// ProtocolError reports the step at which a measurement cycle was aborted.
type ProtocolError struct {
	Step  Step
	Index int // Repetition of FrameClock, 0 for other steps
	Err   error
}

// Error implements error.
func (e *ProtocolError) Error() string {
	if e.Step == StepClock {
		return fmt.Sprintf("measurement %s %d/%d: %v", e.Step, e.Index+1, ClockFrames, e.Err)
	}
	return fmt.Sprintf("measurement %s: %v", e.Step, e.Err)
}

// Unwrap returns the transport error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// command is one control write of the arm sequence.
type command struct {
	step  Step
	index int
	frame Frame
}

// sequence is the ordered list of control writes of a measurement cycle.
var sequence = func() []command {
	cmds := make([]command, 0, ClockFrames+3)
	cmds = append(cmds, command{step: StepArm, frame: FrameArm})
	cmds = append(cmds, command{step: StepMode, frame: FrameMode})
	for i := 0; i < ClockFrames; i++ {
		cmds = append(cmds, command{step: StepClock, index: i, frame: FrameClock})
	}
	cmds = append(cmds, command{step: StepTrigger, frame: FrameTrigger})
	return cmds
}()

// sendCommand writes one frame, zero-padded to CommandSize bytes.
func sendCommand(ctx context.Context, t hal.ControlTransport, f Frame) error {
	var buf [CommandSize]byte
	copy(buf[:], f[:])

	setup := hal.SetupPacket{
		RequestType: commandRequestType,
		Request:     commandRequest,
		Value:       commandValue,
		Index:       sensorInterface,
		Length:      CommandSize,
	}
	n, err := t.ControlTransfer(ctx, &setup, buf[:])
	if err != nil {
		return err
	}
	return pkg.CheckLength(CommandSize, n)
}

// readResult fetches the 4-byte measurement result.
func readResult(ctx context.Context, t hal.ControlTransport) (RawReading, error) {
	var buf [ResponseSize]byte

	setup := hal.SetupPacket{
		RequestType: resultRequestType,
		Request:     resultRequest,
		Value:       resultValue,
		Index:       sensorInterface,
		Length:      ResponseSize,
	}
	n, err := t.ControlTransfer(ctx, &setup, buf[:])
	if err != nil {
		return RawReading{}, err
	}
	if err := pkg.CheckLength(ResponseSize, n); err != nil {
		return RawReading{}, err
	}
	return decodeRaw(buf[:]), nil
}

// TriggerMeasurement runs one measurement cycle on t: the arm, mode, clock
// and trigger writes, the settle wait, then the result read.
//
// ctx is checked once before the arm frame. A started cycle runs to
// completion or to its first transport failure; cancellation does not
// interrupt it, and each transfer is bounded only by the transport timeout.
//
// The first failing transfer aborts the cycle; nothing further is sent and
// the failure is returned as a *ProtocolError. No retries are made. The
// caller must not run two cycles on the same transport concurrently.
func TriggerMeasurement(ctx context.Context, t hal.ControlTransport) (RawReading, error) {
	if err := ctx.Err(); err != nil {
		return RawReading{}, &ProtocolError{Step: StepArm, Err: fmt.Errorf("%w: %w", pkg.ErrTimeout, err)}
	}
	ctx = context.WithoutCancel(ctx)

	for _, cmd := range sequence {
		if err := sendCommand(ctx, t, cmd.frame); err != nil {
			pkg.LogDebug(pkg.ComponentSensor, "command failed",
				"device", t.String(),
				"step", cmd.step.String(),
				"index", cmd.index,
				"error", err)
			return RawReading{}, &ProtocolError{Step: cmd.step, Index: cmd.index, Err: err}
		}
	}

	sleep(SettleTime)

	raw, err := readResult(ctx, t)
	if err != nil {
		pkg.LogDebug(pkg.ComponentSensor, "result read failed",
			"device", t.String(),
			"error", err)
		return RawReading{}, &ProtocolError{Step: StepRead, Err: err}
	}

	pkg.LogDebug(pkg.ComponentSensor, "measurement complete",
		"device", t.String(),
		"sot", raw.SOt,
		"sorh", raw.SOrh)
	return raw, nil
}
