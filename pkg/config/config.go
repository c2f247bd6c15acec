package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"` // Must match the firmware's configured rate
}

// AcquisitionConfig contains sampling and buffering parameters.
type AcquisitionConfig struct {
	IntervalMS     int     `yaml:"interval_ms"`      // Firmware sampling interval; used for axis labeling only
	TraceDepth     int     `yaml:"trace_depth"`      // Rolling buffer capacity in samples
	MaxRetries     int     `yaml:"max_retries"`      // Consecutive malformed frames before Next gives up (0 = retry forever)
	FullScaleVolts float64 `yaml:"full_scale_volts"` // Voltage a byte value of 256 would map to
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	Channels     int           `yaml:"channels"`      // Number of simulated sensors
	NoiseLevel   float64       `yaml:"noise_level"`   // Noise amplitude in byte units
	SampleRate   time.Duration `yaml:"sample_rate"`   // Time between frames
	CorruptEvery int           `yaml:"corrupt_every"` // Emit one malformed line every N frames (0 = never)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0", // "COM4" on Windows
			BaudRate: 9600,
		},
		Acquisition: AcquisitionConfig{
			IntervalMS:     25,
			TraceDepth:     512,
			MaxRetries:     512,
			FullScaleVolts: 5.0,
		},
		Mock: MockConfig{
			Channels:     3,
			NoiseLevel:   4.0,
			SampleRate:   25 * time.Millisecond,
			CorruptEvery: 0,
		},
	}
}

// Interval returns the sampling interval as a time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Acquisition.IntervalMS) * time.Millisecond
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

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

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

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Acquisition.IntervalMS == 0 {
		c.Acquisition.IntervalMS = def.Acquisition.IntervalMS
	}
	if c.Acquisition.TraceDepth == 0 {
		c.Acquisition.TraceDepth = def.Acquisition.TraceDepth
	}
	if c.Acquisition.FullScaleVolts == 0 {
		c.Acquisition.FullScaleVolts = def.Acquisition.FullScaleVolts
	}

	if c.Mock.Channels == 0 {
		c.Mock.Channels = def.Mock.Channels
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
