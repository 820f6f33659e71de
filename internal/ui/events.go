package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DividerWidth is the default width for divider lines.
const DividerWidth = 64

// EventTimeFormat stamps each event line.
const EventTimeFormat = "15:04:05.000"

// PulseLine is the periodic status printed in headless mode.
type PulseLine struct {
	BPM              int
	Samples          int
	SamplesPerSecond float64
	Spark            string
}

// EventLog renders session events as one line each, for terminals that
// can't host the dashboard or for piping into a file.
type EventLog struct {
	w io.Writer
}

// NewEventLog creates an event log writing to w.
func NewEventLog(w io.Writer) *EventLog {
	return &EventLog{w: w}
}

// Info renders an informational event.
// Shows: 12:00:01.250 ● listening on 127.0.0.1:9999
func (l *EventLog) Info(at time.Time, msg string) {
	l.line(at, SymbolComplete, ColorInfo, msg)
}

// Listening renders the waiting-for-sensor event.
func (l *EventLog) Listening(at time.Time, msg string) {
	l.line(at, SymbolPending, ColorSecondary, msg)
}

// Error renders a failure.
// Shows: 12:00:01.250 ✗ Can't listen on 127.0.0.1:9999
func (l *EventLog) Error(at time.Time, msg string) {
	l.line(at, SymbolFail, ColorError, msg)
}

// Stopped renders the end of a session.
func (l *EventLog) Stopped(at time.Time, msg string) {
	l.line(at, SymbolStopped, ColorWarning, msg)
}

// Success renders a completed action such as an export.
func (l *EventLog) Success(at time.Time, msg string) {
	l.line(at, SymbolSuccess, ColorSuccess, msg)
}

// Sample renders a single reading, highlighted when at or above threshold.
// Shows: 12:00:01.270   604
func (l *EventLog) Sample(at time.Time, value, threshold int) {
	style := lipgloss.NewStyle().Foreground(levelColor(value, threshold))
	fmt.Fprintf(l.w, "%s   %s\n", stamp(at), style.Render(fmt.Sprintf("%4d", value)))
}

// Pulse renders the periodic BPM summary.
// Shows: 12:00:05.000 ♥ 72 bpm  1500 samples  49.8/s  ▂▃█▂▁
func (l *EventLog) Pulse(at time.Time, p PulseLine) {
	beat := lipgloss.NewStyle().Foreground(ColorPulse).Bold(true)
	muted := lipgloss.NewStyle().Foreground(ColorMuted)

	fmt.Fprintf(l.w, "%s %s %s\n",
		stamp(at),
		beat.Render(fmt.Sprintf("%s %d bpm", SymbolBeat, p.BPM)),
		muted.Render(fmt.Sprintf("%d samples  %.1f/s", p.Samples, p.SamplesPerSecond))+spark(p.Spark),
	)
}

// Divider renders a horizontal line.
func (l *EventLog) Divider() {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(l.w, "%s\n", style.Render(strings.Repeat("━", DividerWidth)))
}

func (l *EventLog) line(at time.Time, symbol string, color lipgloss.Color, msg string) {
	fmt.Fprintln(l.w, FormatEvent(at, symbol, color, msg))
}

// FormatEvent returns a formatted event line as a string.
func FormatEvent(at time.Time, symbol string, symbolColor lipgloss.Color, msg string) string {
	symbolStyle := lipgloss.NewStyle().Foreground(symbolColor)
	return fmt.Sprintf("%s %s %s", stamp(at), symbolStyle.Render(symbol), msg)
}

// FormatDuration renders a session length compactly, e.g. 45s, 3m05s, 1h02m.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func stamp(at time.Time) string {
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(at.Format(EventTimeFormat))
}

func spark(s string) string {
	if s == "" {
		return ""
	}
	return "  " + s
}
