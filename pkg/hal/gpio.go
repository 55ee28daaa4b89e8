package hal

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// Init initialises the periph host drivers. It is safe to call repeatedly.
func Init() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// GPIOPin is a periph.io backed input line.
type GPIOPin struct {
	name string
	pin  gpio.PinIO
}

var _ Pin = (*GPIOPin)(nil)

// OpenInput looks up the pin by name (e.g. "GPIO3") and configures it as an
// input with the internal pull-up enabled.
func OpenInput(name string) (*GPIOPin, error) {
	if err := Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise gpio host: %w", err)
	}

	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure %s as input: %w", name, err)
	}

	return &GPIOPin{name: name, pin: p}, nil
}

// Name returns the pin name used to open it.
func (p *GPIOPin) Name() string {
	return p.name
}

// Read implements Pin.
func (p *GPIOPin) Read() bool {
	return p.pin.Read() == gpio.High
}
