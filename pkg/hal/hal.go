// Package hal defines the hardware collaborators the node core reads from:
// digital input lines and analog-to-digital converters.
package hal

// Pin is a digital input line. Read returns true for a high level.
type Pin interface {
	Read() bool
}

// ADC is a one-shot analog input returning the raw converter code.
type ADC interface {
	ReadRaw() (int, error)
}

// PinFunc adapts a plain function to Pin.
type PinFunc func() bool

// Read implements Pin.
func (f PinFunc) Read() bool {
	return f()
}

// ADCFunc adapts a plain function to ADC.
type ADCFunc func() (int, error)

// ReadRaw implements ADC.
func (f ADCFunc) ReadRaw() (int, error) {
	return f()
}
