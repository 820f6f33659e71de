package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
)

// rootCmd runs the monitor when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "pulsemon",
	Short: "Live pulse sensor monitor",
	Long: `pulsemon listens for a pulse sensor on a TCP port, stores every reading
and shows a live dashboard with the trace, BPM and session statistics.

The sensor sends one decimal integer per line. Run without a subcommand
to start monitoring with the settings from .pulsemon.yaml.

Examples:
  pulsemon
  pulsemon --port 9999 --threshold 520
  pulsemon --headless > session.log
  pulsemon init`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, &rootMonitorFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .pulsemon.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// The bare command takes the monitor flags too.
	addMonitorFlags(rootCmd, &rootMonitorFlags)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError renders err the way structured errors render themselves.
func printError(w io.Writer, err error) {
	var pmErr *errors.Error
	if stderrors.As(err, &pmErr) {
		fmt.Fprint(w, pmErr.Error())
		return
	}
	if isUnknownCommandError(err) {
		fmt.Fprintf(w, "%s %s\n\n  Run 'pulsemon --help' to see the available commands.\n", ui.SymbolFail, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.SymbolFail, err)
}

// isUnknownCommandError reports whether cobra rejected the arguments.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
