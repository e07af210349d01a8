package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Identity and Request Tests
// =============================================================================

func TestSensorID(t *testing.T) {
	assert.Equal(t, "1130:660c", SensorID.String())
}

func TestRequestFields(t *testing.T) {
	assert.Equal(t, uint8(0x21), commandRequestType)
	assert.Equal(t, uint8(9), commandRequest)
	assert.Equal(t, uint16(0x0200), commandValue)

	assert.Equal(t, uint8(0xA1), resultRequestType)
	assert.Equal(t, uint8(1), resultRequest)
	assert.Equal(t, uint16(0x0300), resultValue)

	assert.Equal(t, uint16(1), sensorInterface)
}

func TestFrames(t *testing.T) {
	assert.Equal(t, Frame{0x0a, 0x0b, 0x0c, 0x0d, 0, 0, 0x02, 0}, FrameArm)
	assert.Equal(t, Frame{0x48}, FrameMode)
	assert.Equal(t, Frame{}, FrameClock)
	assert.Equal(t, Frame{0x0a, 0x0b, 0x0c, 0x0d, 0, 0, 0x01, 0}, FrameTrigger)
}

// =============================================================================
// Enum Tests
// =============================================================================

func TestStep_String(t *testing.T) {
	tests := []struct {
		step     Step
		expected string
	}{
		{StepArm, "arm"},
		{StepMode, "mode"},
		{StepClock, "clock"},
		{StepTrigger, "trigger"},
		{StepRead, "read"},
		{Step(42), "step(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.step.String())
		})
	}
}

func TestUnit_String(t *testing.T) {
	assert.Equal(t, "C", Celsius.String())
	assert.Equal(t, "F", Fahrenheit.String())
	assert.Equal(t, "Unit(75)", Unit('K').String())
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input string
		unit  Unit
		ok    bool
	}{
		{"c", Celsius, true},
		{"C", Celsius, true},
		{"celsius", Celsius, true},
		{"C\n", Celsius, true},
		{"f", Fahrenheit, true},
		{"F", Fahrenheit, true},
		{"Fahrenheit", Fahrenheit, true},
		{"", 0, false},
		{"k", 0, false},
		{" c", 0, false},
		{"\n", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, ok := ParseUnit(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.unit, u)
			}
		})
	}
}

func TestParseAttribute(t *testing.T) {
	a, ok := ParseAttribute("t")
	assert.True(t, ok)
	assert.Equal(t, AttributeTemperature, a)

	a, ok = ParseAttribute("rh")
	assert.True(t, ok)
	assert.Equal(t, AttributeHumidity, a)

	_, ok = ParseAttribute("p")
	assert.False(t, ok)

	for _, a := range Attributes {
		got, ok := ParseAttribute(a.String())
		assert.True(t, ok)
		assert.Equal(t, a, got)
	}
}
