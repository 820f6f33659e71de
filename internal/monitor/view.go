package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 72

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{
		m.renderHeader(),
		"",
		m.renderGraph(width),
		m.renderReadout(width),
	}
	if m.banner != "" {
		style := BannerStyle
		if m.statusIsError {
			style = BannerErrorStyle
		}
		sections = append(sections, "", style.Render(m.banner))
	}
	sections = append(sections, "", m.renderStatus(), m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the title bar with session state and counters.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("♥ pulsemon")

	glyph, glyphStyle := StateIndicator(m.state)
	state := glyphStyle.Render(glyph + " " + m.state.String())
	if m.opts.ListenAddr != "" {
		state += LabelStyle.Render(" " + m.opts.ListenAddr)
	}

	clock := "--:--:--"
	if !m.lastUpdate.IsZero() {
		clock = m.lastUpdate.Format("15:04:05")
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | buffer %d | %d samples | %d/s | %s",
			m.opts.BufferSize, m.stats.Count, m.stats.SamplesPerSecond, clock))

	return HeaderStyle.Render(title + " | " + state + stats)
}

// renderGraph renders the boxed trace of the recent window, or the waiting
// message until there are at least two samples to connect.
func (m Model) renderGraph(width int) string {
	inner := width - 4
	if inner < 1 {
		inner = 1
	}
	height := m.graphHeight()

	title := "Pulse"
	if m.paused {
		title = "Pulse (paused)"
	}
	value := fmt.Sprintf("%d BPM", m.stats.BPM)

	var lines []string
	lines = append(lines, SectionHeader(title, value, width))

	if len(m.window) < 2 {
		for i := 0; i < height; i++ {
			content := ""
			if i == height/2 {
				content = lipgloss.PlaceHorizontal(inner, lipgloss.Center, WaitingStyle.Render(WaitingMessage))
			}
			lines = append(lines, SectionContentLine(content, width))
		}
	} else {
		graph := RenderPulseGraph(m.window, inner, height, Scale{
			Min:       float64(m.opts.MinValue),
			Max:       float64(m.opts.MaxValue),
			Threshold: float64(m.store.Threshold()),
		})
		for _, row := range strings.Split(graph, "\n") {
			lines = append(lines, SectionContentLine(row, width))
		}
	}

	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderReadout renders BPM, the current reading and the session range.
func (m Model) renderReadout(width int) string {
	threshold := m.store.Threshold()

	bpm := BPMStyle.Render(fmt.Sprintf("♥ %3d BPM", m.stats.BPM))
	if trend := m.history.BPM(24); len(trend) > 1 {
		bpm += " " + lipgloss.NewStyle().Foreground(ColorAccentDim).Render(RenderMiniSparkline(trend, 24))
	}

	if !m.stats.HasData {
		return "  " + bpm + "  " + LabelStyle.Render("current --  min --  max --")
	}

	current := lipgloss.NewStyle().Foreground(ValueColor(m.stats.LastValue, threshold)).Bold(true).
		Render(fmt.Sprintf("%4d", m.stats.LastValue))

	barWidth := width / 4
	if barWidth < 8 {
		barWidth = 8
	}
	bar := RangeBar(barWidth, m.stats.LastValue, m.opts.MinValue, m.opts.MaxValue, threshold)

	rng := LabelStyle.Render(fmt.Sprintf("min %d  max %d  threshold %d", m.stats.Min, m.stats.Max, threshold))

	return "  " + bpm + "  " + LabelStyle.Render("current ") + current + " " + bar + "  " + rng
}

// renderStatus renders the last info or error message.
func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsError {
		return "  " + StatusErrorStyle.Render("✗ "+m.status)
	}
	return "  " + StatusInfoStyle.Render(m.status)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.View(m.keys))
}
