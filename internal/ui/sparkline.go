package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

// sparklineBlockRunes provides indexed access to block characters.
var sparklineBlockRunes = []rune(sparklineBlocks)

// SparkScale fixes the vertical range of a sparkline and the level at which
// a reading counts as a beat.
type SparkScale struct {
	Min       int
	Max       int
	Threshold int
}

// RenderSparkline draws the most recent width readings as block characters
// on a fixed scale, so a flat signal stays flat instead of being stretched.
// The line is drawn in the pulse color when the latest reading is at or
// above the threshold, and in the info color otherwise.
func RenderSparkline(values []int, width int, scale SparkScale) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	var sb strings.Builder
	sb.Grow(len(values) * 3)

	numLevels := len(sparklineBlockRunes)
	span := scale.Max - scale.Min

	for _, v := range values {
		level := numLevels / 2
		if span > 0 {
			level = (v - scale.Min) * (numLevels - 1) / span
			if level < 0 {
				level = 0
			} else if level >= numLevels {
				level = numLevels - 1
			}
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	last := values[len(values)-1]
	return lipgloss.NewStyle().Foreground(levelColor(last, scale.Threshold)).Render(sb.String())
}

func levelColor(value, threshold int) lipgloss.Color {
	if value >= threshold {
		return ColorPulse
	}
	return ColorInfo
}
