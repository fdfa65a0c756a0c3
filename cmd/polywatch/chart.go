package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Block elements for sub-character vertical resolution (1/8 to 8/8).
var blockChars = [9]rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// renderAreaChart draws the capital history as a filled area chart using
// Unicode block elements. Columns at or above the baseline (session
// starting capital) render in the gain style, columns below it in the loss
// style. Returns a multi-line string of up to height rows.
func renderAreaChart(values []float64, baseline float64, width, height int, gain, loss lipgloss.Style) string {
	if len(values) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	cols := downsample(values, width)

	minVal, maxVal := cols[0], cols[0]
	for _, v := range cols {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = 1
	}

	// Scale each column to 1..height*8 sub-cell levels so even the minimum
	// stays visible, and pick its style against the baseline once.
	totalLevels := height * 8
	scaled := make([]int, len(cols))
	styles := make([]lipgloss.Style, len(cols))
	for i, v := range cols {
		s := int((v-minVal)/valRange*float64(totalLevels-1)) + 1
		scaled[i] = min(s, totalLevels)
		styles[i] = gain
		if v < baseline {
			styles[i] = loss
		}
	}

	var rows []string
	for row := 0; row < height; row++ {
		rowBottom := (height - 1 - row) * 8

		var sb strings.Builder
		blank := true
		for col := range scaled {
			fill := scaled[col] - rowBottom
			if fill <= 0 {
				sb.WriteRune(' ')
				continue
			}
			blank = false
			sb.WriteString(styles[col].Render(string(blockChars[min(fill, 8)])))
		}
		// Fully empty top rows are dropped rather than rendered.
		if !blank || len(rows) > 0 {
			rows = append(rows, sb.String())
		}
	}

	return strings.Join(rows, "\n")
}

// downsample reduces values to n points by averaging buckets.
func downsample(values []float64, n int) []float64 {
	if len(values) <= n {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	out := make([]float64, n)
	bucketSize := float64(len(values)) / float64(n)
	for i := 0; i < n; i++ {
		start := int(float64(i) * bucketSize)
		end := int(float64(i+1) * bucketSize)
		if end > len(values) {
			end = len(values)
		}
		sum := 0.0
		for j := start; j < end; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
