package hal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IIOChannel reads a Linux industrial I/O ADC channel through sysfs, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage2_raw.
type IIOChannel struct {
	Path string
}

var _ ADC = IIOChannel{}

// ReadRaw implements ADC.
func (c IIOChannel) ReadRaw() (int, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to read adc channel: %w", err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid adc value %q: %w", strings.TrimSpace(string(data)), err)
	}
	return v, nil
}
