package doctor

import (
	"fmt"

	"github.com/muesli/termenv"
)

// TerminalCheck reports whether stdout can host the dashboard.
type TerminalCheck struct {
	IsTerminal func() bool
}

func (c *TerminalCheck) Name() string     { return "terminal" }
func (c *TerminalCheck) Category() string { return CategoryTerminal }

func (c *TerminalCheck) Run() CheckResult {
	if c.IsTerminal == nil || !c.IsTerminal() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "stdout is not a terminal, monitoring will run headless",
			Suggestion: "Run pulsemon directly in a terminal to get the dashboard",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "stdout is a terminal",
	}
}

func (c *TerminalCheck) Fix() error { return nil }

// ColorCheck reports the color support the environment advertises.
type ColorCheck struct {
	Profile termenv.Profile
	NoColor bool // NO_COLOR is set
}

func (c *ColorCheck) Name() string     { return "color" }
func (c *ColorCheck) Category() string { return CategoryTerminal }

func (c *ColorCheck) Run() CheckResult {
	if c.NoColor {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Colors disabled by NO_COLOR",
		}
	}

	name := profileName(c.Profile)
	if c.Profile == termenv.Ascii {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No color support detected",
			Suggestion: "Set display.color to always, or use a terminal with TERM set to xterm-256color",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Color support: %s", name),
	}
}

func (c *ColorCheck) Fix() error { return nil }

func profileName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "true color"
	case termenv.ANSI256:
		return "256 colors"
	case termenv.ANSI:
		return "16 colors"
	default:
		return "none"
	}
}

// NewTerminalChecks returns the TERMINAL checks for the current environment.
func NewTerminalChecks(isTerminal func() bool) []Check {
	return []Check{
		&TerminalCheck{IsTerminal: isTerminal},
		&ColorCheck{Profile: termenv.EnvColorProfile(), NoColor: termenv.EnvNoColor()},
	}
}
