package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the local bootstrap configuration: everything the daemon needs
// before (and in order to) reach the remote store. The tunable operating
// parameters live remotely (see pkg/cloud.Settings); this file holds only
// what cannot.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Cloud  CloudConfig  `yaml:"cloud"`
	Log    LogConfig    `yaml:"log"`
	Mock   MockConfig   `yaml:"mock"`
}

// SerialConfig locates the controller MCU.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// CloudConfig locates the remote store. The auth token deliberately has no
// YAML field: credentials come from the environment only. The config and
// telemetry namespaces live under fixed root keys (see pkg/cloud).
type CloudConfig struct {
	Host           string `yaml:"host"`            // e.g. myproject.firebaseio.com
	RefreshMinutes int    `yaml:"refresh_minutes"` // period between config refreshes
}

// LogConfig controls the daemon's own log output. An empty file means stderr.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MockConfig configures the simulated hardware used with -mock.
type MockConfig struct {
	CollectorCode float64 `yaml:"collector_code"` // Baseline ADC code, channel 0
	StoreCode     float64 `yaml:"store_code"`     // Baseline ADC code, channel 1
	Noise         float64 `yaml:"noise"`          // Noise amplitude in ADC counts
	CouplingRate  float64 `yaml:"coupling_rate"`  // Collector-to-store drift while circulating
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
		},
		Cloud: CloudConfig{
			RefreshMinutes: 60,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Mock: MockConfig{
			CollectorCode: 420,
			StoreCode:     560,
			Noise:         2,
			CouplingRate:  0.5,
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

	if c.Cloud.RefreshMinutes == 0 {
		c.Cloud.RefreshMinutes = def.Cloud.RefreshMinutes
	}

	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = def.Log.MaxBackups
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = def.Log.MaxAgeDays
	}

	if c.Mock.CollectorCode == 0 {
		c.Mock.CollectorCode = def.Mock.CollectorCode
	}
	if c.Mock.StoreCode == 0 {
		c.Mock.StoreCode = def.Mock.StoreCode
	}
	if c.Mock.Noise == 0 {
		c.Mock.Noise = def.Mock.Noise
	}
	if c.Mock.CouplingRate == 0 {
		c.Mock.CouplingRate = def.Mock.CouplingRate
	}
}
