// Package config loads the bridge configuration from a YAML file with
// environment-variable overrides for the connection settings.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" parse directly.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Options configures entity behavior per the device's web UI options.
type Options struct {
	HDMIStreamToggle bool     `yaml:"hdmi_stream_toggle"`
	CATStreamToggle  bool     `yaml:"cat_stream_toggle"`
	CECSourceToggle  bool     `yaml:"cec_source_toggle"`
	CECOutputToggle  bool     `yaml:"cec_output_toggle"`
	CECDelayPower    Duration `yaml:"cec_delay_power"`
	CECDelaySource   Duration `yaml:"cec_delay_source"`
	CECVolumeControl string   `yaml:"cec_volume_control"`
}

// Config is the full bridge configuration.
type Config struct {
	Host            string   `yaml:"host"`
	Username        string   `yaml:"username"`
	Password        string   `yaml:"password"`
	ScanInterval    Duration `yaml:"scan_interval"`
	RefreshDebounce Duration `yaml:"refresh_debounce"`
	APIListen       string   `yaml:"api_listen"`
	Options         Options  `yaml:"options"`
}

// Defaults match the device's factory credentials and the integration's
// polling cadence.
func Defaults() *Config {
	return &Config{
		Username:        "Admin",
		ScanInterval:    Duration(10 * time.Second),
		RefreshDebounce: Duration(time.Second),
		APIListen:       ":8099",
		Options: Options{
			HDMIStreamToggle: true,
			CATStreamToggle:  true,
			CECDelayPower:    Duration(2 * time.Second),
			CECDelaySource:   Duration(2 * time.Second),
			CECVolumeControl: "none",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, and validates the result.
func Load(path string, logger *zap.Logger) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		logger.Debug("Loading config", zap.String("path", path))

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.String("host", cfg.Host),
		zap.Duration("scan_interval", cfg.ScanInterval.Std()))
	return cfg, nil
}

// applyEnv lets deployment environments override connection settings without
// editing the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("JTECH_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("JTECH_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("JTECH_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("JTECH_API_LISTEN"); v != "" {
		c.APIListen = v
	}
}

func (c *Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must be set (config file or JTECH_HOST)")
	}
	switch c.Options.CECVolumeControl {
	case "none", "source", "output":
	default:
		return fmt.Errorf("cec_volume_control must be none, source or output, got %q", c.Options.CECVolumeControl)
	}
	if c.ScanInterval.Std() <= 0 {
		return fmt.Errorf("scan_interval must be positive")
	}
	if c.RefreshDebounce.Std() <= 0 {
		return fmt.Errorf("refresh_debounce must be positive")
	}
	return nil
}
