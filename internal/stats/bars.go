package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

var palette = []string{
	"\x1b[34m",
	"\x1b[32m",
	"\x1b[33m",
	"\x1b[31m",
	"\x1b[35m",
	"\x1b[36m",
}

// ShareStyle selects the glyphs used by RenderShares.
type ShareStyle int

// Share styles.
const (
	SharePie ShareStyle = iota
	ShareDoughnut
)

var shareGlyphs = map[ShareStyle][]rune{
	SharePie:      {'█', '▓', '▒', '░'},
	ShareDoughnut: {'●', '◆', '■', '▲'},
}

// RenderBars draws one horizontal bar per label, scaled to the largest value.
// The selected index, if valid, is marked with a cursor.
func RenderBars(labels []string, values []float64, width, selected int, useColor bool) []string {
	if len(labels) == 0 {
		return []string{"No data."}
	}
	if width <= 0 {
		width = TerminalWidth()
	}
	peak := 0.0
	valueWidth := 0
	valueText := make([]string, len(values))
	for i, v := range values {
		peak = math.Max(peak, v)
		valueText[i] = strconv.FormatFloat(v, 'f', 2, 64)
		valueWidth = maxInt(valueWidth, len(valueText[i]))
	}
	labelWidth := 0
	for _, l := range labels {
		labelWidth = maxInt(labelWidth, runewidth.StringWidth(l))
	}
	labelWidth = minInt(labelWidth, maxInt(6, width/3))
	barSpace := maxInt(1, width-labelWidth-valueWidth-4)

	lines := make([]string, 0, len(labels))
	for i, label := range labels {
		v, text := 0.0, ""
		if i < len(values) {
			v, text = values[i], valueText[i]
		}
		n := 0
		if peak > 0 {
			n = clampInt(int(math.Round(v/peak*float64(barSpace))), 0, barSpace)
		}
		bar := strings.Repeat("█", n)
		if useColor {
			bar = palette[0] + bar + colorReset
		}
		marker := " "
		if i == selected {
			marker = "›"
		}
		cell := runewidth.FillRight(runewidth.Truncate(label, labelWidth, "…"), labelWidth)
		pad := strings.Repeat(" ", barSpace-n)
		lines = append(lines, fmt.Sprintf("%s %s %s%s %*s", marker, cell, bar, pad, valueWidth, text))
	}
	return lines
}

// RenderShares draws a proportional strip followed by a legend with
// percentages, the terminal stand-in for pie and doughnut charts.
func RenderShares(labels []string, values []float64, width int, style ShareStyle, useColor bool) []string {
	shares := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		// Negative counts take no space.
		shares[i] = math.Max(0, v)
		total += shares[i]
	}
	if len(labels) == 0 || total <= 0 {
		return []string{"No data."}
	}
	if width <= 0 {
		width = TerminalWidth()
	}
	glyphs := shareGlyphs[style]
	spans := apportion(shares, total, width)

	var strip strings.Builder
	for i, n := range spans {
		seg := strings.Repeat(string(glyphs[i%len(glyphs)]), n)
		if useColor {
			seg = palette[i%len(palette)] + seg + colorReset
		}
		strip.WriteString(seg)
	}
	lines := []string{strip.String()}
	for i, label := range labels {
		marker := string(glyphs[i%len(glyphs)])
		if useColor {
			marker = palette[i%len(palette)] + marker + colorReset
		}
		value, share := 0.0, 0.0
		if i < len(values) {
			value, share = values[i], shares[i]
		}
		pct := share / total * 100
		lines = append(lines, fmt.Sprintf("%s %s %5.1f%% (%s)", marker, label, pct, formatAxis(value)))
	}
	return lines
}

// apportion splits width cells by value using the largest remainder method.
func apportion(values []float64, total float64, width int) []int {
	spans := make([]int, len(values))
	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, 0, len(values))
	used := 0
	for i, v := range values {
		exact := v / total * float64(width)
		spans[i] = int(math.Floor(exact))
		used += spans[i]
		rems = append(rems, rem{idx: i, frac: exact - float64(spans[i])})
	}
	for left := width - used; left > 0; left-- {
		best := -1
		for j, r := range rems {
			if best == -1 || r.frac > rems[best].frac {
				best = j
			}
		}
		spans[rems[best].idx]++
		rems[best].frac = -1
	}
	return spans
}

func clampInt(v, lo, hi int) int {
	return maxInt(lo, minInt(v, hi))
}
