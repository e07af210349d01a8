package host

import (
	"fmt"
	"time"

	"github.com/ardnew/temperhum/host/hal"
)

// Sensor identification.
const (
	VendorID  uint16 = 0x1130
	ProductID uint16 = 0x660c
)

// SensorID is the USB identity of the TEMPerHUM.
var SensorID = hal.ID{Vendor: VendorID, Product: ProductID}

// SensorInterface is the interface number addressed by every request. A
// transport must claim it before the first measurement.
const SensorInterface uint8 = 1

// Transfer geometry.
const (
	FrameSize    = 8  // Bytes of command in each control write
	CommandSize  = 32 // Bytes carried by each control write
	ResponseSize = 4  // Bytes returned by the result read
	ClockFrames  = 7  // Repetitions of FrameClock
)

// SettleTime is the fixed wait between the trigger frame and the result read
// while the sensor completes its conversion.
const SettleTime = 400 * time.Millisecond

// Control request fields. Both requests address interface 1.
const (
	commandRequestType = hal.RequestDirOut | hal.RequestTypeClass | hal.RequestRecipientInterface // 0x21
	commandRequest     = hal.RequestSetReport                                                     // 9
	commandValue       = uint16(hal.ReportTypeOutput) << 8                                        // 0x0200

	resultRequestType = hal.RequestDirIn | hal.RequestTypeClass | hal.RequestRecipientInterface // 0xA1
	resultRequest     = hal.RequestGetReport                                                    // 1
	resultValue       = uint16(hal.ReportTypeFeature) << 8                                      // 0x0300

	sensorInterface = uint16(SensorInterface)
)

// Frame is an 8-byte command payload sent verbatim in a control write.
type Frame [FrameSize]byte

// Command frames of one measurement cycle, in send order.
var (
	FrameArm     = Frame{10, 11, 12, 13, 0, 0, 2, 0}
	FrameMode    = Frame{0x48, 0, 0, 0, 0, 0, 0, 0}
	FrameClock   = Frame{0, 0, 0, 0, 0, 0, 0, 0}
	FrameTrigger = Frame{10, 11, 12, 13, 0, 0, 1, 0}
)

// Calibration constants, in hundredths of a degree and ten-thousandths of a
// percent.
const (
	tempOffset       = 4010    // d1 = 40.10 °C with d2 = 0.01 °C per count
	fahrenheitOffset = 3200    // 32.00 °F
	rhLinear         = 367     // c2
	rhOffset         = 20468   // c1
	rhQuadDivisor    = 6267    // c3 denominator
	rhTempReference  = 2500    // 25.00 °C
	rhTempStep       = 125     // counts per correction step
	rhMax            = 1000000 // 100.0000 %
)

// Step identifies one stage of a measurement cycle.
type Step uint8

// Measurement cycle steps.
const (
	StepArm Step = iota
	StepMode
	StepClock
	StepTrigger
	StepRead
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepArm:
		return "arm"
	case StepMode:
		return "mode"
	case StepClock:
		return "clock"
	case StepTrigger:
		return "trigger"
	case StepRead:
		return "read"
	default:
		return fmt.Sprintf("step(%d)", s)
	}
}

// Unit selects the temperature scale of the t attribute.
type Unit byte

// Temperature units.
const (
	Celsius    Unit = 'C'
	Fahrenheit Unit = 'F'
)

// String returns "C" or "F".
func (u Unit) String() string {
	switch u {
	case Celsius, Fahrenheit:
		return string(rune(u))
	default:
		return fmt.Sprintf("Unit(%d)", byte(u))
	}
}

// ParseUnit maps the first character of s to a Unit, case-insensitively.
// Returns false if s is empty or starts with anything but c, C, f or F.
func ParseUnit(s string) (Unit, bool) {
	if len(s) == 0 {
		return 0, false
	}
	switch s[0] {
	case 'c', 'C':
		return Celsius, true
	case 'f', 'F':
		return Fahrenheit, true
	}
	return 0, false
}

// Attribute selects one of the two published values of a device.
type Attribute uint8

// Published attributes.
const (
	AttributeTemperature Attribute = iota // "t"
	AttributeHumidity                     // "rh"
)

// String returns the published attribute name.
func (a Attribute) String() string {
	switch a {
	case AttributeTemperature:
		return "t"
	case AttributeHumidity:
		return "rh"
	default:
		return fmt.Sprintf("Attribute(%d)", a)
	}
}

// ParseAttribute maps a published attribute name to its Attribute.
func ParseAttribute(name string) (Attribute, bool) {
	switch name {
	case "t":
		return AttributeTemperature, true
	case "rh":
		return AttributeHumidity, true
	}
	return 0, false
}

// Attributes lists every published attribute.
var Attributes = []Attribute{AttributeTemperature, AttributeHumidity}

// ErrorText is returned in place of a reading when a measurement fails.
const ErrorText = "ERROR"
