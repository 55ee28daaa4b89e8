package probe

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Kelvin is the offset between the Kelvin and Celsius scales.
const Kelvin = 273.15

// Thermistor describes an NTC thermistor in a voltage divider read by an ADC.
// All values are deployment specific.
type Thermistor struct {
	Beta   float32 // Beta parameter (K)
	T0     float32 // assumed average temperature (°C) at which R0 is specified
	R0     float32 // reference resistance (Ω)
	VRef   float32 // divider supply / ADC reference voltage (V)
	ADCMax float32 // converter full scale code
	Offset float32 // calibration offset added to the result (°C)
}

// Celsius converts a raw converter code to a calibrated temperature using
// the Beta equation 1/T = 1/T0 + 1/B * ln(R/R0).
func (t Thermistor) Celsius(raw int) (float32, error) {
	if raw <= 0 || t.ADCMax <= 0 {
		return 0, fmt.Errorf("raw sample %d: %w", raw, ErrNoSignal)
	}

	volt := (float32(raw) / t.ADCMax) * t.VRef
	if volt <= 0 {
		return 0, fmt.Errorf("divider voltage %f: %w", volt, ErrNoSignal)
	}

	ohm := (t.VRef * t.R0 / volt) - t.R0
	if ohm <= 0 {
		return 0, fmt.Errorf("resistance %f: %w", ohm, ErrOutOfRange)
	}

	inv := 1/(t.T0+Kelvin) + (1/t.Beta)*math32.Log(ohm/t.R0)
	if inv <= 0 {
		return 0, fmt.Errorf("resistance %f: %w", ohm, ErrOutOfRange)
	}
	temp := 1/inv - Kelvin + t.Offset
	if math32.IsNaN(temp) || math32.IsInf(temp, 0) {
		return 0, fmt.Errorf("temperature %f: %w", temp, ErrOutOfRange)
	}
	return temp, nil
}

// Raw returns the converter code that would read as the given calibrated
// temperature. It is the inverse of Celsius, rounded to the nearest code.
func (t Thermistor) Raw(celsius float32) int {
	kelvin := celsius - t.Offset + Kelvin
	ohm := t.R0 * math32.Exp(t.Beta*(1/kelvin-1/(t.T0+Kelvin)))
	volt := t.VRef * t.R0 / (ohm + t.R0)
	return int(volt/t.VRef*t.ADCMax + 0.5)
}
