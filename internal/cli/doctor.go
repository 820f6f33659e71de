package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulsemon/internal/config"
	"github.com/rileyhilliard/pulsemon/internal/doctor"
	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	doctorJSON bool
	doctorFix  bool
)

// doctorCmd diagnoses configuration and environment issues
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, port and terminal issues",
	Long: `Run diagnostic checks before a session.

Checks:
  - Config file presence and validity
  - Sensor port, metrics and feed addresses are free
  - Terminal and color support for the dashboard
  - Export directory is writable

Examples:
  pulsemon doctor
  pulsemon doctor --fix
  pulsemon doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout(), func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		})
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand runs every check and reports. It fails when any check fails.
func doctorCommand(w io.Writer, isTerminal func() bool) error {
	checks := collectChecks(cfgFile, isTerminal)
	results := doctor.RunAll(checks)
	if doctorFix {
		results = doctor.FixAll(checks, results)
	}

	var err error
	if doctorJSON {
		err = outputDoctorJSON(w, checks, results)
	} else {
		outputDoctorText(w, checks, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrConfig,
			doctor.Summary(results),
			"Fix the failing checks above, then run 'pulsemon doctor' again.")
	}
	return nil
}

// collectChecks builds the checks for the effective config. When the config
// can't be loaded the CONFIG checks report it and the rest use defaults.
func collectChecks(cfgPath string, isTerminal func() bool) []doctor.Check {
	cfg := config.DefaultConfig()
	if path, err := config.Find(cfgPath); err == nil {
		if loaded, err := config.Load(path); err == nil {
			cfg = loaded
		}
	}

	checks := doctor.NewConfigChecks(cfgPath)
	checks = append(checks,
		&doctor.ListenCheck{Addr: cfg.Listen.Addr()},
		&doctor.ServerCheck{Server: "metrics", Addr: cfg.Metrics.Addr},
		&doctor.ServerCheck{Server: "feed", Addr: cfg.Feed.Addr},
	)
	checks = append(checks, doctor.NewTerminalChecks(isTerminal)...)
	checks = append(checks, &doctor.ExportDirCheck{Dir: cfg.Export.Dir, Format: cfg.Export.Format})
	return checks
}

// groupResults pairs results with their categories in report order.
func groupResults(checks []doctor.Check, results []doctor.CheckResult) []CategoryOutput {
	grouped := make(map[string][]doctor.CheckResult)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], results[i])
	}

	var out []CategoryOutput
	for _, cat := range doctor.CategoryOrder {
		if len(grouped[cat]) > 0 {
			out = append(out, CategoryOutput{Name: cat, Results: grouped[cat]})
		}
	}
	return out
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	counts := doctor.CountByStatus(results)
	output := DoctorOutput{
		Categories: groupResults(checks, results),
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			Fixable:  doctor.FixableCount(results),
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("pulsemon Diagnostic Report"))
	fmt.Fprintln(w)

	for _, category := range groupResults(checks, results) {
		fmt.Fprintln(w, headerStyle.Render(category.Name))
		for _, result := range category.Results {
			symbol, style := ui.SymbolComplete, successStyle
			switch result.Status {
			case doctor.StatusWarn:
				style = warnStyle
			case doctor.StatusFail:
				symbol, style = ui.SymbolFail, errorStyle
			}

			fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)
			if result.Suggestion != "" && result.Status != doctor.StatusPass {
				for _, line := range strings.Split(result.Suggestion, "\n") {
					fmt.Fprintf(w, "    %s\n", mutedStyle.Render(line))
				}
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))
		if doctor.FixableCount(results) > 0 && !doctorFix {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  Run with %s to attempt automatic fixes where possible.\n", mutedStyle.Render("--fix"))
		}
	}
	fmt.Fprintln(w)
}
