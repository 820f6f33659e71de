package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pulsemon/internal/session"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	// The trace is cyan while low and turns pink once it crosses the threshold.
	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")
	ColorGraph     = lipgloss.Color("#00FFFF")
	ColorThreshold = lipgloss.Color("#FFAA00")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	BPMStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	WaitingStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical).
				Bold(true)

	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorWarning).
			Bold(true).
			Padding(0, 1)

	BannerErrorStyle = BannerStyle.
				Background(ColorCritical)
)

// State indicator glyphs
const (
	IndicatorIdle      = "◌"
	IndicatorListening = "◐"
	IndicatorConnected = "◉"
	IndicatorFinished  = "■"
	IndicatorFailed    = "✗"
)

// StateIndicator returns the glyph and style for a session state.
func StateIndicator(st session.State) (string, lipgloss.Style) {
	switch st {
	case session.StateListening:
		return IndicatorListening, lipgloss.NewStyle().Foreground(ColorTextSecondary)
	case session.StateConnected:
		return IndicatorConnected, lipgloss.NewStyle().Foreground(ColorHealthy)
	case session.StateFinished:
		return IndicatorFinished, lipgloss.NewStyle().Foreground(ColorWarning)
	case session.StateFailed:
		return IndicatorFailed, lipgloss.NewStyle().Foreground(ColorCritical)
	default:
		return IndicatorIdle, lipgloss.NewStyle().Foreground(ColorTextMuted)
	}
}

// ValueColor colors a reading by which side of the threshold it falls on.
func ValueColor(value, threshold int) lipgloss.Color {
	if value >= threshold {
		return ColorAccent
	}
	return ColorGraph
}

// RangeBar renders where value sits between lo and hi, with a tick at the
// threshold position.
// Format: ━━━━━━━━━━━┃─────────
func RangeBar(width, value, lo, hi, threshold int) string {
	if width < 1 {
		width = 1
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	filled := clampInt((value-lo)*width/span, width)
	tick := clampInt((threshold-lo)*width/span, width-1)

	var bar strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == tick:
			bar.WriteString(lipgloss.NewStyle().Foreground(ColorThreshold).Render("┃"))
		case i < filled:
			bar.WriteString(lipgloss.NewStyle().Foreground(ValueColor(value, threshold)).Render("━"))
		default:
			bar.WriteString(lipgloss.NewStyle().Foreground(ColorBorder).Render("─"))
		}
	}
	return bar.String()
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
