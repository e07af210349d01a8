package sim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardnew/temperhum/host/hal"
	"github.com/ardnew/temperhum/pkg"
)

// Request fields the sensor answers to.
const (
	writeRequestType = hal.RequestDirOut | hal.RequestTypeClass | hal.RequestRecipientInterface
	readRequestType  = hal.RequestDirIn | hal.RequestTypeClass | hal.RequestRecipientInterface
	writeValue       = uint16(hal.ReportTypeOutput) << 8
	readValue        = uint16(hal.ReportTypeFeature) << 8
	sensorInterface  = 1
	commandSize      = 32
	responseSize     = 4
	frameSize        = 8
)

// Frame is the significant prefix of a command write.
type Frame [frameSize]byte

// Command frames in the order the sensor expects them.
var (
	frameArm     = Frame{10, 11, 12, 13, 0, 0, 2, 0}
	frameMode    = Frame{0x48, 0, 0, 0, 0, 0, 0, 0}
	frameClock   = Frame{}
	frameTrigger = Frame{10, 11, 12, 13, 0, 0, 1, 0}
)

var expected = []Frame{
	frameArm, frameMode,
	frameClock, frameClock, frameClock, frameClock, frameClock, frameClock, frameClock,
	frameTrigger,
}

// Transfer records one control transfer seen by the sensor.
type Transfer struct {
	Setup hal.SetupPacket
	Data  []byte // Copy of the OUT payload, or the IN response
}

// Fault overrides the outcome of one transfer.
type Fault struct {
	Length int   // Byte count reported when Err is nil
	Err    error // Error returned instead of performing the transfer
}

// Option configures a Sensor.
type Option func(*Sensor)

// WithReading sets the raw codes returned by the result read.
func WithReading(sot, sorh uint16) Option {
	return func(s *Sensor) {
		s.sot, s.sorh = sot, sorh
	}
}

// WithDelay makes every transfer take at least d.
func WithDelay(d time.Duration) Option {
	return func(s *Sensor) {
		s.delay = d
	}
}

// Sensor emulates a TEMPerHUM on the far side of a control pipe.
//
// It checks every request against the command sequence, answers the result
// read only after a complete sequence, and counts protocol violations and
// overlapping transfers. Faults can be scheduled by transfer number.
type Sensor struct {
	name  string
	delay time.Duration

	mutex      sync.Mutex
	sot, sorh  uint16
	pos        int // Next expected frame
	calls      int
	cycles     int
	violations int
	faults     map[int]Fault
	transfers  []Transfer
	closed     bool

	inFlight atomic.Int32
	overlaps atomic.Int32
}

var _ hal.ControlTransport = (*Sensor)(nil)

// New creates an emulated sensor named name.
func New(name string, opts ...Option) *Sensor {
	s := &Sensor{
		name:   name,
		faults: make(map[int]Fault),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// String returns the sensor name.
func (s *Sensor) String() string {
	return s.name
}

// SetReading changes the raw codes returned by later result reads.
func (s *Sensor) SetReading(sot, sorh uint16) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sot, s.sorh = sot, sorh
}

// InjectFault schedules f for the transfer numbered call, counting from zero
// across the lifetime of the sensor.
func (s *Sensor) InjectFault(call int, f Fault) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.faults[call] = f
}

// Calls returns the number of transfers received.
func (s *Sensor) Calls() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls
}

// Cycles returns the number of results delivered.
func (s *Sensor) Cycles() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.cycles
}

// Violations returns the number of requests that broke the command sequence.
func (s *Sensor) Violations() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.violations
}

// Overlaps returns the number of transfers that started while another was
// still in progress.
func (s *Sensor) Overlaps() int {
	return int(s.overlaps.Load())
}

// Transfers returns a copy of the transfer log.
func (s *Sensor) Transfers() []Transfer {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]Transfer, len(s.transfers))
	copy(out, s.transfers)
	return out
}

// Frames returns the frame prefix of every logged write, in order.
func (s *Sensor) Frames() []Frame {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var out []Frame
	for _, t := range s.transfers {
		if t.Setup.IsIn() {
			continue
		}
		var f Frame
		copy(f[:], t.Data)
		out = append(out, f)
	}
	return out
}

// Closed reports whether Close was called.
func (s *Sensor) Closed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// ControlTransfer implements hal.ControlTransport.
func (s *Sensor) ControlTransfer(ctx context.Context, setup *hal.SetupPacket, data []byte) (int, error) {
	if s.inFlight.Add(1) > 1 {
		s.overlaps.Add(1)
	}
	defer s.inFlight.Add(-1)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %w", pkg.ErrTimeout, ctx.Err())
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return 0, pkg.ErrNoDevice
	}

	call := s.calls
	s.calls++

	t := Transfer{Setup: *setup}
	if !setup.IsIn() {
		t.Data = append([]byte(nil), data...)
	}
	s.transfers = append(s.transfers, t)

	if f, ok := s.faults[call]; ok {
		delete(s.faults, call)
		if f.Err != nil {
			return 0, f.Err
		}
		return f.Length, nil
	}

	if setup.IsIn() {
		return s.read(setup, data)
	}
	return s.write(setup, data)
}

func (s *Sensor) write(setup *hal.SetupPacket, data []byte) (int, error) {
	if setup.RequestType != writeRequestType || setup.Request != hal.RequestSetReport ||
		setup.Value != writeValue || setup.Index != sensorInterface ||
		len(data) != commandSize {
		s.violations++
		s.pos = 0
		return 0, pkg.ErrStall
	}

	var f Frame
	copy(f[:], data)

	switch {
	case s.pos < len(expected) && f == expected[s.pos]:
		s.pos++
	case f == frameArm:
		// A fresh arm restarts the sequence.
		s.violations++
		s.pos = 1
	default:
		s.violations++
		s.pos = 0
	}
	return len(data), nil
}

func (s *Sensor) read(setup *hal.SetupPacket, data []byte) (int, error) {
	if setup.RequestType != readRequestType || setup.Request != hal.RequestGetReport ||
		setup.Value != readValue || setup.Index != sensorInterface {
		s.violations++
		return 0, pkg.ErrStall
	}
	if s.pos != len(expected) {
		s.violations++
		s.pos = 0
		return 0, pkg.ErrStall
	}
	if len(data) < responseSize {
		return 0, pkg.ErrNoMemory
	}

	s.pos = 0
	s.cycles++
	data[0] = byte(s.sot >> 8)
	data[1] = byte(s.sot)
	data[2] = byte(s.sorh >> 8)
	data[3] = byte(s.sorh)
	s.transfers[len(s.transfers)-1].Data = append([]byte(nil), data[:responseSize]...)
	return responseSize, nil
}

// Close implements hal.ControlTransport.
func (s *Sensor) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return pkg.ErrClosed
	}
	s.closed = true
	return nil
}
