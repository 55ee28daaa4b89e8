package probe

import (
	"fmt"

	"github.com/itohio/sensornode/pkg/hal"
)

// Temperature reports the NTC thermistor temperature.
type Temperature struct {
	adc   hal.ADC
	model Thermistor
}

var _ Probe = (*Temperature)(nil)

// NewTemperature creates a temperature probe reading from adc.
func NewTemperature(adc hal.ADC, model Thermistor) *Temperature {
	return &Temperature{adc: adc, model: model}
}

// Name implements Probe.
func (p *Temperature) Name() string {
	return "temperature"
}

// ReadAndReport implements Probe.
func (p *Temperature) ReadAndReport() Report {
	raw, err := p.adc.ReadRaw()
	if err != nil {
		return Report{Line: "Temperature: ERROR\n", Err: err}
	}

	temp, err := p.model.Celsius(raw)
	if err != nil {
		return Report{Line: "Temperature: ERROR\n", Err: err}
	}

	return Report{Line: fmt.Sprintf("Temperature: %f\n", temp)}
}
