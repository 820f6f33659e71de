package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Listen.Port = 7000
	cfg.Detection.Window = 30 * time.Second
	cfg.Feed.Addr = ":8080"
	require.NoError(t, Save(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# pulsemon configuration")
	assert.Contains(t, string(data), "window: 30s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_RefusesOverwrite(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: 1\n")

	err := Save(path, DefaultConfig(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Save(path, DefaultConfig(), true))
}

func TestSetValue(t *testing.T) {
	original := `# my sensor rig
version: 1
listen:
  host: 127.0.0.1 # loopback only
  port: 9999
`
	tests := []struct {
		name     string
		key      string
		value    string
		contains []string
		check    func(t *testing.T, cfg *Config)
	}{
		{
			name:     "existing scalar",
			key:      "listen.port",
			value:    "7000",
			contains: []string{"# my sensor rig", "# loopback only", "port: 7000"},
			check:    func(t *testing.T, cfg *Config) { assert.Equal(t, 7000, cfg.Listen.Port) },
		},
		{
			name:     "new key in missing section",
			key:      "detection.threshold",
			value:    "600",
			contains: []string{"detection:", "threshold: 600"},
			check:    func(t *testing.T, cfg *Config) { assert.Equal(t, 600, cfg.Detection.Threshold) },
		},
		{
			name:  "duration",
			key:   "detection.window",
			value: "15s",
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, 15*time.Second, cfg.Detection.Window) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), original)
			require.NoError(t, SetValue(path, tt.key, tt.value))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, string(data), s)
			}

			cfg, err := Load(path)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestSetValue_Errors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		errMsg string
	}{
		{"section not value", "listen", "is a section"},
		{"scalar not section", "listen.port.extra", "'listen.port' is not a section"},
		{"empty segment", "listen..port", "invalid key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "listen:\n  port: 9999\n")
			err := SetValue(path, tt.key, "1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSetValue_MissingFile(t *testing.T) {
	err := SetValue(filepath.Join(t.TempDir(), "nope.yaml"), "listen.port", "1")
	assert.Error(t, err)
}
