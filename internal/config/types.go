package config

import (
	"net"
	"strconv"
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .pulsemon.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Listen    ListenConfig    `yaml:"listen" mapstructure:"listen"`
	Detection DetectionConfig `yaml:"detection" mapstructure:"detection"`
	Display   DisplayConfig   `yaml:"display" mapstructure:"display"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Feed      FeedConfig      `yaml:"feed" mapstructure:"feed"`
}

// ListenConfig is where the sensor connects.
type ListenConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// Addr joins host and port.
func (l ListenConfig) Addr() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// DetectionConfig controls beat detection.
type DetectionConfig struct {
	// Threshold is the reading at or above which the signal counts as high.
	Threshold int `yaml:"threshold" mapstructure:"threshold"`

	// Window is how far back BPM looks.
	Window time.Duration `yaml:"window" mapstructure:"window"`

	// ParsePolicy is "skip" or "abort" for malformed lines.
	ParsePolicy string `yaml:"parse_policy" mapstructure:"parse_policy"`
}

// DisplayConfig controls the dashboard.
type DisplayConfig struct {
	// BufferSize is how many recent samples the graph shows.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size"`

	// Refresh is how often BPM is re-derived while no data arrives.
	Refresh time.Duration `yaml:"refresh" mapstructure:"refresh"`

	// MinValue and MaxValue bound the graph's vertical axis.
	MinValue int `yaml:"min_value" mapstructure:"min_value"`
	MaxValue int `yaml:"max_value" mapstructure:"max_value"`

	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// ExportConfig controls sample log exports.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`

	// OnExit writes the full log when monitoring ends.
	OnExit bool `yaml:"on_exit" mapstructure:"on_exit"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// FeedConfig enables the WebSocket feed when Addr is set.
type FeedConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Listen: ListenConfig{
			Host: "127.0.0.1",
			Port: 9999,
		},
		Detection: DetectionConfig{
			Threshold:   512,
			Window:      60 * time.Second,
			ParsePolicy: "skip",
		},
		Display: DisplayConfig{
			BufferSize: 50,
			Refresh:    250 * time.Millisecond,
			MinValue:   0,
			MaxValue:   1024,
			Color:      "auto",
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "csv",
		},
	}
}
