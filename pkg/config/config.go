package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the node configuration.
type Config struct {
	Serial     SerialConfig     `yaml:"serial"`
	Node       NodeConfig       `yaml:"node"`
	Thermistor ThermistorConfig `yaml:"thermistor"`
	Pins       PinsConfig       `yaml:"pins"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Mock       MockConfig       `yaml:"mock"`
}

// SerialConfig contains serial link configuration.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"` // Bounded wait of one receive
	BufferSize  int           `yaml:"buffer_size"`  // Longer messages are truncated
}

// NodeConfig contains the startup state of the command protocol.
type NodeConfig struct {
	IntervalMS    uint64 `yaml:"interval_ms"`     // Initial poll interval
	MinIntervalMS uint64 `yaml:"min_interval_ms"` // freq: requests below this are rejected
	Active        string `yaml:"active"`          // Initial enabled pattern, MSB first like active:
	Banner        string `yaml:"banner"`          // Sent once at startup
}

// ThermistorConfig contains the NTC thermistor and ADC parameters.
type ThermistorConfig struct {
	Beta    float32 `yaml:"beta"`
	T0      float32 `yaml:"t0"` // Average temperature (°C) the reference resistance is given for
	R0      float32 `yaml:"r0"`
	VRef    float32 `yaml:"vref"`
	ADCMax  float32 `yaml:"adc_max"`
	Offset  float32 `yaml:"offset"`  // Calibration offset (°C)
	Samples int     `yaml:"samples"` // ADC reads averaged per report
}

// PinsConfig names the hardware inputs.
type PinsConfig struct {
	Presence string `yaml:"presence"`
	TriggerA string `yaml:"trigger_a"`
	TriggerB string `yaml:"trigger_b"`
	ADC      string `yaml:"adc"` // IIO sysfs channel file
}

// MQTTConfig enables mirroring of the link to a broker.
type MQTTConfig struct {
	URL string `yaml:"url"` // Empty disables mirroring
	QoS byte   `yaml:"qos"`
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Empty disables the endpoint
}

// MockConfig contains simulated hardware configuration.
type MockConfig struct {
	PresencePeriod   time.Duration `yaml:"presence_period"`   // Time between simulated objects
	PresenceDuration time.Duration `yaml:"presence_duration"` // How long an object stays
	TriggerPeriod    time.Duration `yaml:"trigger_period"`    // Aux trigger toggle period
	Temperature      float32       `yaml:"temperature"`       // Simulated temperature (°C)
	NoiseLevel       float32       `yaml:"noise_level"`       // Simulated noise (°C)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:        "/dev/ttyUSB0",
			BaudRate:    9600,
			ReadTimeout: 100 * time.Millisecond,
			BufferSize:  1024,
		},
		Node: NodeConfig{
			IntervalMS:    10000,
			MinIntervalMS: 10,
			Active:        "0011",
			Banner:        "Klaar:",
		},
		Thermistor: ThermistorConfig{
			Beta:    3950,
			T0:      25,
			R0:      10000,
			VRef:    3.3,
			ADCMax:  4095,
			Offset:  6,
			Samples: 1,
		},
		Pins: PinsConfig{
			Presence: "GPIO3",
			TriggerA: "GPIO0",
			TriggerB: "GPIO0",
			ADC:      "/sys/bus/iio/devices/iio:device0/in_voltage2_raw",
		},
		Mock: MockConfig{
			PresencePeriod:   20 * time.Second,
			PresenceDuration: 2 * time.Second,
			TriggerPeriod:    7 * time.Second,
			Temperature:      21,
			NoiseLevel:       0.2,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that cannot be replaced by defaults.
func (c *Config) Validate() error {
	if c.Node.MinIntervalMS == 0 {
		return fmt.Errorf("node.min_interval_ms must be positive")
	}
	if c.Node.IntervalMS < c.Node.MinIntervalMS {
		return fmt.Errorf("node.interval_ms %d is below node.min_interval_ms %d", c.Node.IntervalMS, c.Node.MinIntervalMS)
	}
	if strings.Trim(c.Node.Active, "01") != "" {
		return fmt.Errorf("node.active %q must contain only 0 and 1", c.Node.Active)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos %d must be 0, 1 or 2", c.MQTT.QoS)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = def.Serial.ReadTimeout
	}
	if c.Serial.BufferSize <= 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}

	if c.Node.MinIntervalMS == 0 {
		c.Node.MinIntervalMS = def.Node.MinIntervalMS
	}
	if c.Node.IntervalMS == 0 {
		c.Node.IntervalMS = def.Node.IntervalMS
	}
	if c.Node.Active == "" {
		c.Node.Active = def.Node.Active
	}
	if c.Node.Banner == "" {
		c.Node.Banner = def.Node.Banner
	}

	if c.Thermistor.Beta == 0 {
		c.Thermistor.Beta = def.Thermistor.Beta
	}
	if c.Thermistor.R0 == 0 {
		c.Thermistor.R0 = def.Thermistor.R0
	}
	if c.Thermistor.VRef == 0 {
		c.Thermistor.VRef = def.Thermistor.VRef
	}
	if c.Thermistor.ADCMax == 0 {
		c.Thermistor.ADCMax = def.Thermistor.ADCMax
	}
	if c.Thermistor.Samples <= 0 {
		c.Thermistor.Samples = def.Thermistor.Samples
	}

	if c.Pins.Presence == "" {
		c.Pins.Presence = def.Pins.Presence
	}
	if c.Pins.TriggerA == "" {
		c.Pins.TriggerA = def.Pins.TriggerA
	}
	if c.Pins.TriggerB == "" {
		c.Pins.TriggerB = def.Pins.TriggerB
	}
	if c.Pins.ADC == "" {
		c.Pins.ADC = def.Pins.ADC
	}

	if c.Mock.PresencePeriod == 0 {
		c.Mock.PresencePeriod = def.Mock.PresencePeriod
	}
	if c.Mock.PresenceDuration == 0 {
		c.Mock.PresenceDuration = def.Mock.PresenceDuration
	}
	if c.Mock.TriggerPeriod == 0 {
		c.Mock.TriggerPeriod = def.Mock.TriggerPeriod
	}
}
