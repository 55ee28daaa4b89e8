package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "test_config_*.yaml")
	require.NoError(t, err)
	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 1024, cfg.Serial.BufferSize)
	assert.Equal(t, uint64(10000), cfg.Node.IntervalMS)
	assert.Equal(t, uint64(10), cfg.Node.MinIntervalMS)
	assert.Equal(t, "0011", cfg.Node.Active)
	assert.Equal(t, "Klaar:", cfg.Node.Banner)
	assert.Equal(t, float32(3950), cfg.Thermistor.Beta)
	assert.Equal(t, float32(25), cfg.Thermistor.T0)
	assert.Equal(t, float32(10000), cfg.Thermistor.R0)
	assert.Equal(t, float32(3.3), cfg.Thermistor.VRef)
	assert.Equal(t, float32(4095), cfg.Thermistor.ADCMax)
	assert.Equal(t, float32(6), cfg.Thermistor.Offset)
	assert.Equal(t, "GPIO3", cfg.Pins.Presence)
	assert.Empty(t, cfg.MQTT.URL)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeTemp(t, `
serial:
  port: "/dev/ttyAMA0"
  baud_rate: 115200
  read_timeout: 50ms
  buffer_size: 256

node:
  interval_ms: 5000
  min_interval_ms: 1000
  active: "0101"
  banner: "Ready:"

thermistor:
  beta: 3435
  t0: 20
  r0: 47000
  vref: 5
  adc_max: 1023
  offset: 0
  samples: 8

pins:
  presence: "GPIO17"
  trigger_a: "GPIO22"
  trigger_b: "GPIO27"
  adc: "/tmp/adc"

mqtt:
  url: "mqtt://localhost:1883/node/"
  qos: 1

metrics:
  addr: ":9100"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyAMA0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 256, cfg.Serial.BufferSize)
	assert.Equal(t, uint64(5000), cfg.Node.IntervalMS)
	assert.Equal(t, uint64(1000), cfg.Node.MinIntervalMS)
	assert.Equal(t, "0101", cfg.Node.Active)
	assert.Equal(t, "Ready:", cfg.Node.Banner)
	assert.Equal(t, float32(3435), cfg.Thermistor.Beta)
	assert.Equal(t, float32(20), cfg.Thermistor.T0)
	assert.Equal(t, float32(47000), cfg.Thermistor.R0)
	assert.Equal(t, float32(5), cfg.Thermistor.VRef)
	assert.Equal(t, float32(1023), cfg.Thermistor.ADCMax)
	assert.Equal(t, float32(0), cfg.Thermistor.Offset)
	assert.Equal(t, 8, cfg.Thermistor.Samples)
	assert.Equal(t, "GPIO17", cfg.Pins.Presence)
	assert.Equal(t, "GPIO22", cfg.Pins.TriggerA)
	assert.Equal(t, "GPIO27", cfg.Pins.TriggerB)
	assert.Equal(t, "/tmp/adc", cfg.Pins.ADC)
	assert.Equal(t, "mqtt://localhost:1883/node/", cfg.MQTT.URL)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfg, err := Load(writeTemp(t, "invalid: yaml: content: ["))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
serial:
  port: "/dev/ttyACM0"
`))
	require.NoError(t, err)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, uint64(10000), cfg.Node.IntervalMS)
	assert.Equal(t, float32(6), cfg.Thermistor.Offset)
}

func TestLoad_ZeroedFieldsFallBack(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
serial:
  baud_rate: 0
  buffer_size: 0
thermistor:
  beta: 0
  samples: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 1024, cfg.Serial.BufferSize)
	assert.Equal(t, float32(3950), cfg.Thermistor.Beta)
	assert.Equal(t, 1, cfg.Thermistor.Samples)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"interval below floor", "node:\n  interval_ms: 5\n  min_interval_ms: 10\n"},
		{"bad active pattern", "node:\n  active: \"01a1\"\n"},
		{"bad qos", "mqtt:\n  qos: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeTemp(t, tt.yaml))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyS1"
	cfg.Node.IntervalMS = 2500
	cfg.Node.Active = "1111"

	path := writeTemp(t, "")
	require.NoError(t, cfg.Save(path))

	// Load it back and verify
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS1", loaded.Serial.Port)
	assert.Equal(t, uint64(2500), loaded.Node.IntervalMS)
	assert.Equal(t, "1111", loaded.Node.Active)
	assert.Equal(t, cfg.Mock, loaded.Mock)
}
