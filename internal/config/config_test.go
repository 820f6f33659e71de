package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "127.0.0.1", cfg.Listen.Host)
	assert.Equal(t, 9999, cfg.Listen.Port)
	assert.Equal(t, 512, cfg.Detection.Threshold)
	assert.Equal(t, 60*time.Second, cfg.Detection.Window)
	assert.Equal(t, "skip", cfg.Detection.ParsePolicy)
	assert.Equal(t, 50, cfg.Display.BufferSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Display.Refresh)
	assert.Equal(t, 0, cfg.Display.MinValue)
	assert.Equal(t, 1024, cfg.Display.MaxValue)
	assert.Equal(t, "auto", cfg.Display.Color)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.False(t, cfg.Export.OnExit)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Empty(t, cfg.Feed.Addr)

	require.NoError(t, Validate(cfg))
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:9999", ListenConfig{Host: "127.0.0.1", Port: 9999}.Addr())
	assert.Equal(t, "[::1]:0", ListenConfig{Host: "::1", Port: 0}.Addr())
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
version: 1
listen:
  host: 0.0.0.0
  port: 7000
detection:
  threshold: 600
  window: 30s
  parse_policy: abort
display:
  buffer_size: 120
  refresh: 1s
export:
  format: json
  on_exit: true
metrics:
  addr: ":9100"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Listen.Host)
	assert.Equal(t, 7000, cfg.Listen.Port)
	assert.Equal(t, 600, cfg.Detection.Threshold)
	assert.Equal(t, 30*time.Second, cfg.Detection.Window)
	assert.Equal(t, "abort", cfg.Detection.ParsePolicy)
	assert.Equal(t, 120, cfg.Display.BufferSize)
	assert.Equal(t, time.Second, cfg.Display.Refresh)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.True(t, cfg.Export.OnExit)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)

	// Unset keys keep their defaults.
	assert.Equal(t, 1024, cfg.Display.MaxValue)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Empty(t, cfg.Feed.Addr)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/.pulsemon.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Config file not found")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "listen: [unterminated\n")
	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadInvalidValue(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "detection:\n  window: soon\n")
	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid config format")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "listen:\n  port: 7000\n")
	t.Setenv("PULSEMON_LISTEN_PORT", "7100")
	t.Setenv("PULSEMON_DETECTION_THRESHOLD", "480")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Listen.Port)
	assert.Equal(t, 480, cfg.Detection.Threshold)
}

func TestDecode_FlagBinding(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "listen:\n  port: 7000\ndetection:\n  threshold: 600\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 9999, "")
	flags.Int("threshold", 512, "")
	require.NoError(t, flags.Parse([]string{"--port", "7200"}))

	v := NewViper()
	require.NoError(t, v.BindPFlag("listen.port", flags.Lookup("port")))
	require.NoError(t, v.BindPFlag("detection.threshold", flags.Lookup("threshold")))
	require.NoError(t, Read(v, path))

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, 7200, cfg.Listen.Port, "changed flag wins over file")
	assert.Equal(t, 600, cfg.Detection.Threshold, "unchanged flag leaves file value")
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "exports"), ExpandTilde("~/exports"))
	assert.Equal(t, "./exports", ExpandTilde("./exports"))
	assert.Equal(t, "~other/x", ExpandTilde("~other/x"))
}

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string) (explicit, want string)
	}{
		{
			name: "explicit path exists",
			setup: func(t *testing.T, root string) (string, string) {
				path := filepath.Join(root, "custom.yaml")
				require.NoError(t, os.WriteFile(path, []byte("version: 1"), 0o644))
				return path, path
			},
		},
		{
			name: "current directory has config",
			setup: func(t *testing.T, root string) (string, string) {
				dir := filepath.Join(root, "repo")
				require.NoError(t, os.MkdirAll(dir, 0o755))
				t.Chdir(dir)
				return "", writeConfig(t, dir, "version: 1")
			},
		},
		{
			name: "parent directory has config",
			setup: func(t *testing.T, root string) (string, string) {
				repo := filepath.Join(root, "repo")
				sub := filepath.Join(repo, "a", "b")
				require.NoError(t, os.MkdirAll(sub, 0o755))
				require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0o755))
				t.Chdir(sub)
				return "", writeConfig(t, repo, "version: 1")
			},
		},
		{
			name: "search stops at git root",
			setup: func(t *testing.T, root string) (string, string) {
				repo := filepath.Join(root, "repo")
				sub := filepath.Join(repo, "a")
				require.NoError(t, os.MkdirAll(sub, 0o755))
				require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0o755))
				writeConfig(t, root, "version: 1")
				t.Chdir(sub)
				return "", ""
			},
		},
		{
			name: "falls back to global config",
			setup: func(t *testing.T, root string) (string, string) {
				repo := filepath.Join(root, "repo")
				require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
				global := filepath.Join(root, "home", GlobalConfigDir, GlobalConfigFile)
				require.NoError(t, os.MkdirAll(filepath.Dir(global), 0o755))
				require.NoError(t, os.WriteFile(global, []byte("version: 1"), 0o644))
				t.Chdir(repo)
				return "", global
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			home := filepath.Join(root, "home")
			require.NoError(t, os.MkdirAll(home, 0o755))
			t.Setenv("HOME", home)

			explicit, want := tt.setup(t, root)
			got, err := Find(explicit)
			require.NoError(t, err)

			if want == "" {
				assert.Empty(t, got)
				return
			}
			// macOS temp dirs resolve through /private.
			wantReal, _ := filepath.EvalSymlinks(want)
			gotReal, _ := filepath.EvalSymlinks(got)
			assert.Equal(t, wantReal, gotReal)
		})
	}
}

func TestFind_ExplicitMissing(t *testing.T) {
	_, err := Find("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Specified config file not found")
}

func TestLoadOrDefault(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	t.Setenv("HOME", filepath.Join(root, "nohome"))
	t.Chdir(root)

	cfg, err := LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	writeConfig(t, root, "listen:\n  port: 8123\n")
	cfg, err = LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Listen.Port)
}
