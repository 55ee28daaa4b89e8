package probe

import (
	"fmt"

	"github.com/itohio/sensornode/pkg/hal"
)

// Presence reports the infrared proximity sensor. The line is active low:
// a low level means an object is in front of the sensor.
type Presence struct {
	pin hal.Pin
}

var _ Probe = (*Presence)(nil)

// NewPresence creates a presence probe on pin.
func NewPresence(pin hal.Pin) *Presence {
	return &Presence{pin: pin}
}

// Name implements Probe.
func (p *Presence) Name() string {
	return "presence"
}

// ReadAndReport implements Probe.
func (p *Presence) ReadAndReport() Report {
	if !p.pin.Read() {
		return Report{Line: "Object detected\n"}
	}
	return Report{Line: "No object detected\n"}
}

// Trigger reports an auxiliary switch input, active low.
type Trigger struct {
	id  int
	pin hal.Pin
}

var _ Probe = (*Trigger)(nil)

// NewTrigger creates a trigger probe reported as "Sensor <id>".
func NewTrigger(id int, pin hal.Pin) *Trigger {
	return &Trigger{id: id, pin: pin}
}

// Name implements Probe.
func (p *Trigger) Name() string {
	return fmt.Sprintf("trigger%d", p.id)
}

// ReadAndReport implements Probe.
func (p *Trigger) ReadAndReport() Report {
	if !p.pin.Read() {
		return Report{Line: fmt.Sprintf("Sensor %d AAN\n", p.id)}
	}
	return Report{Line: fmt.Sprintf("Sensor %d UIT\n", p.id)}
}
