package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pulsemon/internal/config"
	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/export"
	"github.com/rileyhilliard/pulsemon/internal/ui"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Directory to write .pulsemon.yaml into
	Host           string // Listen host, empty for the default
	Port           int    // Listen port, 0 for the default
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
	Out            io.Writer
}

var (
	initForce bool
	initYes   bool
	initHost  string
	initPort  int
)

// initCmd creates a new .pulsemon.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .pulsemon.yaml configuration",
	Long: `Create a .pulsemon.yaml file in the current directory.

Prompts for the listen address, beat threshold and export format, then
writes the full config with every other setting at its default.

Examples:
  pulsemon init
  pulsemon init --yes --port 9999
  pulsemon init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Dir:            ".",
			Host:           initHost,
			Port:           initPort,
			Overwrite:      initForce,
			NonInteractive: initYes || nonInteractiveEnv(),
			Out:            cmd.OutOrStdout(),
		})
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "skip prompts and use defaults")
	initCmd.Flags().StringVar(&initHost, "host", "", "listen address to write")
	initCmd.Flags().IntVar(&initPort, "port", 0, "listen port to write")
	rootCmd.AddCommand(initCmd)
}

// nonInteractiveEnv reports whether prompts should be skipped because of
// the environment (CI, or PULSEMON_NON_INTERACTIVE set).
func nonInteractiveEnv() bool {
	return os.Getenv("PULSEMON_NON_INTERACTIVE") != "" || os.Getenv("CI") != ""
}

// Init creates a new .pulsemon.yaml configuration file.
func Init(opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	configPath := filepath.Join(opts.Dir, config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.Host != "" {
		cfg.Listen.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Listen.Port = opts.Port
	}

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(configPath, cfg, true); err != nil {
		return err
	}

	fmt.Fprintf(opts.Out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(opts.Out, "Next steps:")
	fmt.Fprintf(opts.Out, "  pulsemon              - Listen on %s and show the dashboard\n", cfg.Listen.Addr())
	fmt.Fprintln(opts.Out, "  pulsemon config show  - Print the effective configuration")
	return nil
}

// promptConfig asks for the handful of settings worth choosing up front.
func promptConfig(cfg *config.Config) error {
	port := strconv.Itoa(cfg.Listen.Port)
	threshold := strconv.Itoa(cfg.Detection.Threshold)
	format := cfg.Export.Format

	formatOptions := make([]huh.Option[string], 0, len(export.Formats))
	for _, f := range export.Formats {
		formatOptions = append(formatOptions, huh.NewOption(strings.ToUpper(string(f)), string(f)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("Use 0.0.0.0 to accept a sensor on another machine").
				Placeholder(cfg.Listen.Host).
				Value(&cfg.Listen.Host).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("listen address is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Port").
				Description("TCP port the sensor connects to").
				Value(&port).
				Validate(validatePort),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Beat threshold").
				Description(fmt.Sprintf("Readings at or above this count as a beat (%d-%d)",
					cfg.Display.MinValue, cfg.Display.MaxValue)).
				Value(&threshold).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("threshold must be a whole number")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Export format").
				Options(formatOptions...).
				Value(&format),
			huh.NewConfirm().
				Title("Export all samples when a session ends?").
				Value(&cfg.Export.OnExit),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --yes")
	}

	cfg.Listen.Host = strings.TrimSpace(cfg.Listen.Host)
	cfg.Listen.Port, _ = strconv.Atoi(strings.TrimSpace(port))
	cfg.Detection.Threshold, _ = strconv.Atoi(strings.TrimSpace(threshold))
	cfg.Export.Format = format
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("port must be a number between 0 and 65535")
	}
	return nil
}
