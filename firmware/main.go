//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/sensornode/pkg/command"
	"github.com/itohio/sensornode/pkg/hal"
	"github.com/itohio/sensornode/pkg/probe"
)

var (
	uart = machine.UART0
	adc  machine.ADC

	registry *probe.Registry

	// Protocol state. Everything runs on one goroutine, so no locking.
	active          uint64
	intervalMS      uint64 = INTERVAL_MS
	reportRequested bool
	lastPresence    = true

	lastPoll time.Time

	// Collects a message across loop iterations
	framer = command.NewFramer(SERIAL_BUFFER_SIZE, READ_TIMEOUT_MS*time.Millisecond)
)

func main() {
	for _, pin := range []machine.Pin{PIN_PRESENCE, PIN_TRIGGER1, PIN_TRIGGER2} {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	PIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	adc = machine.ADC{Pin: PIN_ADC}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	model := probe.Thermistor{
		Beta:   THERMISTOR_BETA,
		T0:     THERMISTOR_T0,
		R0:     THERMISTOR_R0,
		VRef:   ADC_REFERENCE_MV / 1000.0,
		ADCMax: 1<<ADC_RESOLUTION - 1,
		Offset: THERMISTOR_OFFSET,
	}
	registry = probe.NewRegistry(
		probe.NewTemperature(hal.ADCFunc(readADC), model),
		probe.NewPresence(hal.PinFunc(PIN_PRESENCE.Get)),
		probe.NewTrigger(2, hal.PinFunc(PIN_TRIGGER1.Get)),
		probe.NewTrigger(3, hal.PinFunc(PIN_TRIGGER2.Get)),
	)

	active, _ = command.ParseBits(ACTIVE)
	active &= registry.Mask()

	uart.Write([]byte("Klaar:"))
	lastPoll = time.Now()

	for {
		processSerial()

		if time.Since(lastPoll) >= time.Duration(intervalMS)*time.Millisecond {
			poll()
			lastPoll = time.Now()
		}

		time.Sleep(time.Millisecond)
	}
}

// readADC scales the 16-bit machine reading down to ADC_RESOLUTION bits.
func readADC() (int, error) {
	return int(adc.Get() >> (16 - ADC_RESOLUTION)), nil
}

// processSerial collects buffered bytes and applies a message once the line
// has been idle for READ_TIMEOUT_MS or the buffer is full.
func processSerial() {
	now := time.Now()
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}
		if msg, ok := framer.Push(data, now); ok {
			apply(msg)
		}
	}

	if msg, ok := framer.Poll(now); ok {
		apply(msg)
	}
}

func apply(msg []byte) {
	u := command.Parse(msg)
	if u.HasActive {
		active = u.Active & registry.Mask()
	}
	if u.HasInterval && u.Interval >= MIN_INTERVAL_MS {
		intervalMS = u.Interval
	}
	if u.Check {
		reportRequested = true
	}
}

func poll() {
	level := PIN_PRESENCE.Get()
	edge := lastPresence && !level
	lastPresence = level

	if !edge && !reportRequested {
		return
	}

	registry.Each(active, func(_ int, p probe.Probe) {
		uart.Write([]byte(p.ReadAndReport().Line))
	})
	reportRequested = false
}
