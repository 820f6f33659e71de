package config

import (
	"fmt"
	"net"
	"time"

	"github.com/rileyhilliard/pulsemon/internal/errors"
)

// MinRefresh is the fastest dashboard refresh allowed.
const MinRefresh = 50 * time.Millisecond

var (
	validParsePolicies = map[string]bool{"skip": true, "abort": true, "": true}
	validExportFormats = map[string]bool{"csv": true, "json": true, "yaml": true, "yml": true, "": true}
	validColors        = map[string]bool{"auto": true, "always": true, "never": true, "": true}
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pulsemon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade pulsemon or lower the version in .pulsemon.yaml.")
	}

	sections := []struct {
		name  string
		check func(*Config) error
	}{
		{"listen", validateListen},
		{"display", validateDisplay},
		{"detection", validateDetection},
		{"export", validateExport},
		{"metrics", validateServers},
	}
	for _, s := range sections {
		if err := s.check(cfg); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check the '%s' section in your .pulsemon.yaml.", s.name))
		}
	}

	return nil
}

func validateListen(cfg *Config) error {
	if cfg.Listen.Port < 0 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port %d is out of range - use 0-65535", cfg.Listen.Port)
	}
	return nil
}

func validateDetection(cfg *Config) error {
	d := cfg.Detection
	if d.Window <= 0 {
		return fmt.Errorf("detection.window must be positive, got %v", d.Window)
	}
	if !validParsePolicies[d.ParsePolicy] {
		return fmt.Errorf("detection.parse_policy '%s' isn't valid - use 'skip' or 'abort'", d.ParsePolicy)
	}
	if d.Threshold < cfg.Display.MinValue || d.Threshold > cfg.Display.MaxValue {
		return fmt.Errorf("detection.threshold %d is outside the display range %d-%d",
			d.Threshold, cfg.Display.MinValue, cfg.Display.MaxValue)
	}
	return nil
}

func validateDisplay(cfg *Config) error {
	d := cfg.Display
	if d.BufferSize <= 0 {
		return fmt.Errorf("display.buffer_size must be positive, got %d", d.BufferSize)
	}
	if d.Refresh < MinRefresh {
		return fmt.Errorf("display.refresh %v is too fast - use at least %v", d.Refresh, MinRefresh)
	}
	if d.MinValue >= d.MaxValue {
		return fmt.Errorf("display.min_value (%d) must be below display.max_value (%d)", d.MinValue, d.MaxValue)
	}
	if !validColors[d.Color] {
		return fmt.Errorf("display.color '%s' isn't valid - use 'auto', 'always', or 'never'", d.Color)
	}
	return nil
}

func validateExport(cfg *Config) error {
	if !validExportFormats[cfg.Export.Format] {
		return fmt.Errorf("export.format '%s' isn't valid - use 'csv', 'json', or 'yaml'", cfg.Export.Format)
	}
	return nil
}

func validateServers(cfg *Config) error {
	for key, addr := range map[string]string{"metrics.addr": cfg.Metrics.Addr, "feed.addr": cfg.Feed.Addr} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%s '%s' should look like ':9100' or 'localhost:9100'", key, addr)
		}
	}
	if cfg.Metrics.Addr != "" && cfg.Metrics.Addr == cfg.Feed.Addr {
		return fmt.Errorf("metrics.addr and feed.addr can't both be %s", cfg.Metrics.Addr)
	}
	return nil
}
