package host

import "strconv"

// TemperatureCentiCelsius converts a raw temperature code to hundredths of a
// degree Celsius using the linear model T = d1 + d2*SOt.
func TemperatureCentiCelsius(sot int32) int32 {
	return sot - tempOffset
}

// DisplayTemperature converts hundredths of a degree Celsius into hundredths
// of the given unit. Division truncates.
func DisplayTemperature(t int32, u Unit) int32 {
	if u == Fahrenheit {
		return t*9/5 + fahrenheitOffset
	}
	return t
}

// RelativeHumidity returns the temperature-corrected relative humidity in
// ten-thousandths of a percent, clamped to at most 100%.
//
// t is the temperature in hundredths of a degree Celsius. The correction
// multiplier is 1 + sorh/125 with truncating division, so it changes in
// whole steps rather than proportionally.
func RelativeHumidity(t, sorh int32) int64 {
	so := int64(sorh)
	unc := rhLinear*so - (rhOffset + so*so*100/rhQuadDivisor)
	rh := (int64(t)-rhTempReference)*(1+so/rhTempStep) + unc
	if rh > rhMax {
		rh = rhMax
	}
	return rh
}

// FormatTemperature renders hundredths of a degree as "<whole>.<remainder>".
// The remainder is not zero-padded: 505 renders "5.5".
func FormatTemperature(t int32) string {
	return formatFixed(int64(t)/100, int64(t)%100)
}

// FormatHumidity renders ten-thousandths of a percent with two decimal digits
// as "<whole>.<hundredths>", without zero padding.
func FormatHumidity(rh int64) string {
	return formatFixed(rh/10000, (rh%10000)/100)
}

func formatFixed(whole, frac int64) string {
	b := make([]byte, 0, 24)
	b = strconv.AppendInt(b, whole, 10)
	b = append(b, '.')
	b = strconv.AppendInt(b, frac, 10)
	return string(b)
}

// Reading is one converted measurement.
type Reading struct {
	Raw         RawReading
	Unit        Unit  // Unit of Temperature
	Temperature int32 // Hundredths of a degree in Unit
	Humidity    int64 // Ten-thousandths of a percent
}

// Convert applies the calibration to raw using unit u.
func Convert(raw RawReading, u Unit) Reading {
	t := TemperatureCentiCelsius(int32(raw.SOt))
	return Reading{
		Raw:         raw,
		Unit:        u,
		Temperature: DisplayTemperature(t, u),
		Humidity:    RelativeHumidity(t, int32(raw.SOrh)),
	}
}

// Format renders the value of attribute a.
func (r Reading) Format(a Attribute) string {
	if a == AttributeHumidity {
		return FormatHumidity(r.Humidity)
	}
	return FormatTemperature(r.Temperature)
}
