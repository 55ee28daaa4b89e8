//go:build tinygo

package main

import "machine"

const (
	// Poll configuration
	INTERVAL_MS     = 10000 // Initial poll interval in milliseconds
	MIN_INTERVAL_MS = 10    // freq: requests below this are ignored
	ACTIVE          = "0011"

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Thermistor divider
	THERMISTOR_BETA   = 3950
	THERMISTOR_T0     = 25    // °C at which THERMISTOR_R0 is specified
	THERMISTOR_R0     = 10000 // Ω
	THERMISTOR_OFFSET = 6     // calibration offset in °C

	// Input pins, all active low with pull-ups
	PIN_PRESENCE = machine.D3
	PIN_TRIGGER1 = machine.D0
	PIN_TRIGGER2 = machine.D0 // both auxiliary sensors share one line on the reference board

	PIN_ADC = machine.A2

	// Serial configuration, same framing as the host serial link
	UART_BAUD_RATE     = 9600
	SERIAL_BUFFER_SIZE = 1024 // Bytes per message, longer input is split
	READ_TIMEOUT_MS    = 100  // Idle gap that ends a message
)
