package node

import (
	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/hal"
	"github.com/itohio/sensornode/pkg/probe"
)

// Hardware is the set of inputs the node reads.
type Hardware struct {
	Presence hal.Pin
	TriggerA hal.Pin
	TriggerB hal.Pin
	ADC      hal.ADC
}

// Thermistor converts the config section into a conversion model.
func Thermistor(c config.ThermistorConfig) probe.Thermistor {
	return probe.Thermistor{
		Beta:   c.Beta,
		T0:     c.T0,
		R0:     c.R0,
		VRef:   c.VRef,
		ADCMax: c.ADCMax,
		Offset: c.Offset,
	}
}

// NewRegistry builds the fixed probe table:
//
//	0 temperature
//	1 presence
//	2 trigger A
//	3 trigger B
func NewRegistry(hw Hardware, th config.ThermistorConfig) *probe.Registry {
	probes := []probe.Probe{
		probe.NewTemperature(hal.Averaging{ADC: hw.ADC, N: th.Samples}, Thermistor(th)),
		probe.NewPresence(hw.Presence),
	}
	probes = append(probes, probe.NewTrigger(len(probes), hw.TriggerA))
	probes = append(probes, probe.NewTrigger(len(probes), hw.TriggerB))

	return probe.NewRegistry(probes...)
}
