package cli

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/pulsemon/internal/config"
	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/spf13/cobra"
)

// configCmd groups the config inspection commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit the configuration",
	Long: `Inspect or edit the pulsemon configuration.

Examples:
  pulsemon config show
  pulsemon config path
  pulsemon config set listen.port 9000`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the configuration pulsemon would run with, after defaults and PULSEMON_* environment overrides.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		data, err := config.Marshal(cfg)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "# no config file found, showing defaults")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "# from %s\n", path)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file found",
				"Run 'pulsemon init' to create one.")
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one value in the config file",
	Long: `Set one dotted key in the config file, keeping comments and layout.

The result is validated and the file is left untouched when the new
value is rejected.

Examples:
  pulsemon config set listen.port 9000
  pulsemon config set detection.threshold 540
  pulsemon config set export.format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file found",
				"Run 'pulsemon init' to create one.")
		}
		if err := setConfigValue(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// setConfigValue edits key in place and restores the original file if the
// edited config no longer loads or validates.
func setConfigValue(path, key, value string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check permissions on "+path)
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Keys are dotted paths like listen.port or export.format.")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if restoreErr := os.WriteFile(path, original, 0o644); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Failed to restore config after a rejected value",
				"Check "+path+" by hand.")
		}
		return err
	}
	return nil
}
