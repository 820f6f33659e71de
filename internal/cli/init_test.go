package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/pulsemon/internal/config"
	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NonInteractive(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Init(InitOptions{Dir: dir, Host: "0.0.0.0", Port: 9100, NonInteractive: true, Out: &out})
	require.NoError(t, err)

	path := filepath.Join(dir, config.ConfigFileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Listen.Host)
	assert.Equal(t, 9100, cfg.Listen.Port)
	assert.Equal(t, config.DefaultConfig().Detection, cfg.Detection)

	assert.Contains(t, out.String(), "Created "+path)
	assert.Contains(t, out.String(), "0.0.0.0:9100")
}

func TestInit_RefusesExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	err := Init(InitOptions{Dir: dir, NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "--force")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestInit_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	err := Init(InitOptions{Dir: dir, Port: 7000, Overwrite: true, NonInteractive: true, Out: &bytes.Buffer{}})
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Listen.Port)
}

func TestInit_RejectsInvalidPort(t *testing.T) {
	dir := t.TempDir()

	err := Init(InitOptions{Dir: dir, Port: 70000, NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	_, statErr := os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.True(t, os.IsNotExist(statErr), "nothing is written for an invalid config")
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"9999", false},
		{" 0 ", false},
		{"65535", false},
		{"65536", true},
		{"-1", true},
		{"abc", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := validatePort(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNonInteractiveEnv(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("PULSEMON_NON_INTERACTIVE", "")
	assert.False(t, nonInteractiveEnv())

	t.Setenv("CI", "true")
	assert.True(t, nonInteractiveEnv())
}
