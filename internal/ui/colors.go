package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Accents for the pulse trace and branding.
const (
	ColorPulse  lipgloss.Color = "#FF2E88"
	ColorAccent lipgloss.Color = "#00E5FF"
	ColorBorder lipgloss.Color = "#3A3F4B"
)

// SetColorMode applies a display.color setting: "never" strips all color,
// "always" forces 256 colors even when piped, anything else leaves
// detection to lipgloss unless NO_COLOR is set.
func SetColorMode(mode string) {
	switch mode {
	case "never":
		DisableColors()
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	default:
		if termenv.EnvNoColor() {
			DisableColors()
		}
	}
}

// DisableColors switches all rendering to monochrome (for --no-color).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
