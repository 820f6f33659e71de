package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '⠀'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

// Scale fixes a graph's vertical range and the beat threshold drawn across it.
type Scale struct {
	Min       float64
	Max       float64
	Threshold float64
}

// findMinMax returns the minimum and maximum values in a slice.
func findMinMax(data []float64) (minVal, maxVal float64) {
	if len(data) == 0 {
		return 0, 0
	}
	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// brailleGrid is a height x width block of braille cells plotted in dot
// coordinates: x runs 0..2*width-1 left to right, y runs 0..4*height-1
// bottom to top.
type brailleGrid struct {
	width, height int
	cells         [][]rune
	data          [][]bool
}

func newBrailleGrid(width, height int) *brailleGrid {
	g := &brailleGrid{width: width, height: height}
	g.cells = make([][]rune, height)
	g.data = make([][]bool, height)
	for i := range g.cells {
		g.cells[i] = make([]rune, width)
		g.data[i] = make([]bool, width)
		for j := range g.cells[i] {
			g.cells[i][j] = brailleBase
		}
	}
	return g
}

// set lights one dot; isData marks the cell as part of the trace.
func (g *brailleGrid) set(x, y int, isData bool) {
	col := x / 2
	row := g.height - 1 - y/4
	if col < 0 || col >= g.width || row < 0 || row >= g.height {
		return
	}
	g.cells[row][col] |= rune(1 << brailleDots[3-y%4][x%2])
	if isData {
		g.data[row][col] = true
	}
}

// RenderPulseGraph plots readings as a connected braille trace on a fixed
// scale, newest on the right. Fewer readings than the graph holds are
// right-aligned; more are downsampled keeping peaks. The threshold is drawn
// as a dotted rule. Columns whose peak reaches the threshold are drawn in the
// accent color.
func RenderPulseGraph(data []float64, width, height int, scale Scale) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	totalDots := height * 4
	targetPoints := width * 2

	resampled := data
	if len(data) > targetPoints {
		resampled = resampleData(data, targetPoints)
	}

	level := func(v float64) int {
		return clampInt(int(normalizeValue(v, scale.Min, scale.Max)*float64(totalDots-1)+0.5), totalDots-1)
	}

	g := newBrailleGrid(width, height)

	thresholdLevel := level(scale.Threshold)
	for x := 0; x < targetPoints; x += 2 {
		g.set(x, thresholdLevel, false)
	}

	colMax := make([]float64, width)
	for i := range colMax {
		colMax[i] = scale.Min
	}

	offset := targetPoints - len(resampled)
	prev := -1
	for i, v := range resampled {
		x := i + offset
		lv := level(v)
		from, to := lv, lv
		if prev >= 0 {
			from, to = min(prev, lv), max(prev, lv)
		}
		for y := from; y <= to; y++ {
			g.set(x, y, true)
		}
		if v > colMax[x/2] {
			colMax[x/2] = v
		}
		prev = lv
	}

	lines := make([]string, height)
	for r, row := range g.cells {
		var line strings.Builder
		for c, char := range row {
			color := ColorThreshold
			if g.data[r][c] {
				color = ColorGraph
				if colMax[c] >= scale.Threshold {
					color = ColorAccent
				}
			}
			line.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(char)))
		}
		lines[r] = line.String()
	}

	return strings.Join(lines, "\n")
}

// RenderMiniSparkline renders a single-row sparkline scaled to the data's
// own range. Used for the BPM trend, where the interesting part is the
// change rather than the absolute value.
func RenderMiniSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal := findMinMax(data)
	if len(data) > width {
		data = resampleData(data, width)
	}

	var result strings.Builder
	for _, val := range data {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}

	return result.String()
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-based sampling to preserve peaks/spikes.
// When upsampling (expanding), uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
