package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".pulsemon.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/pulsemon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. PULSEMON_LISTEN_PORT.
	EnvPrefix = "PULSEMON"
)

// NewViper returns a viper instance with defaults and environment
// overrides wired up. Callers may bind flags to it before Decode.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Read loads the file at path into v. An empty path leaves v on defaults.
func Read(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'pulsemon init' to create a config file, or specify one with --config")
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}
	return nil
}

// Decode converts the merged viper state into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		source := v.ConfigFileUsed()
		if source == "" {
			source = "your config"
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}
	cfg.Export.Dir = ExpandTilde(cfg.Export.Dir)
	return cfg, nil
}

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := NewViper()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .pulsemon.yaml in current directory
// 3. .pulsemon.yaml in parent directories (stops at git root or home)
// 4. ~/.config/pulsemon/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for !isGitRoot(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if not found.
func LoadOrDefault() (*Config, error) {
	path, err := Find("")
	if err != nil {
		return nil, err
	}
	return Load(path)
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("listen.host", d.Listen.Host)
	v.SetDefault("listen.port", d.Listen.Port)
	v.SetDefault("detection.threshold", d.Detection.Threshold)
	v.SetDefault("detection.window", d.Detection.Window.String())
	v.SetDefault("detection.parse_policy", d.Detection.ParsePolicy)
	v.SetDefault("display.buffer_size", d.Display.BufferSize)
	v.SetDefault("display.refresh", d.Display.Refresh.String())
	v.SetDefault("display.min_value", d.Display.MinValue)
	v.SetDefault("display.max_value", d.Display.MaxValue)
	v.SetDefault("display.color", d.Display.Color)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.on_exit", d.Export.OnExit)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("feed.addr", "")
}

// ExpandTilde replaces ~ or ~/path with the user's home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
