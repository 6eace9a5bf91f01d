package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	lineColor           = "\x1b[36m"
	terminalWidthBackup = 100
)

// canvas is a grid of braille cells, each holding a 2x4 dot mask.
type canvas struct {
	cells [][]uint8
	cols  int
	rows  int
}

func newCanvas(cols, rows int) *canvas {
	cells := make([][]uint8, rows)
	for y := range cells {
		cells[y] = make([]uint8, cols)
	}
	return &canvas{cells: cells, cols: cols, rows: rows}
}

// set lights the dot at pixel (x, y); the pixel grid is 2*cols by 4*rows.
func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cx, cy := x/2, y/4
	if cx >= c.cols || cy >= c.rows {
		return
	}
	c.cells[cy][cx] |= dotMask(x%2, y%4)
}

// line draws with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *canvas) row(y int) string {
	var b strings.Builder
	for _, mask := range c.cells[y] {
		b.WriteRune(rune(0x2800 + int(mask)))
	}
	return b.String()
}

// dotMask maps a dot position inside a cell to its braille bit.
func dotMask(x, y int) uint8 {
	left := [4]uint8{0x01, 0x02, 0x04, 0x40}
	right := [4]uint8{0x08, 0x10, 0x20, 0x80}
	if x == 0 {
		return left[y]
	}
	return right[y]
}

// PlotTrend renders a braille line chart of values with labels under the
// first and last points. The y axis starts at zero.
func PlotTrend(w io.Writer, title string, labels []string, values []float64, width, height int, useColor bool) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(values) == 0 {
		_, err := fmt.Fprintln(w, "No data.")
		return err
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}
	axis := axisLabels(peak, height)
	axisWidth := 0
	for _, label := range axis {
		axisWidth = maxInt(axisWidth, utf8.RuneCountInString(label))
	}
	cols := PlotWidthFor(width, axisWidth)

	cv := newCanvas(cols, height)
	points := resample(values, cols)
	pixelRows := height * 4
	prevX, prevY := -1, -1
	for i, v := range points {
		x := i * 2
		y := int(math.Round((1 - v/peak) * float64(pixelRows-1)))
		if prevX >= 0 {
			cv.line(prevX, prevY, x, y)
		} else {
			cv.set(x, y)
		}
		prevX, prevY = x, y
	}

	for y := 0; y < height; y++ {
		body := cv.row(y)
		if useColor && os.Getenv("NO_COLOR") == "" {
			body = lineColor + body + colorReset
		}
		if _, err := fmt.Fprintf(w, "%*s%s%s\n", axisWidth, axis[y], axisSeparator, body); err != nil {
			return err
		}
	}
	footer := xAxisLabels(labels, cols)
	if footer == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "%*s%s%s\n", axisWidth, "", strings.Repeat(" ", utf8.RuneCountInString(axisSeparator)), footer)
	return err
}

func axisLabels(peak float64, height int) []string {
	labels := make([]string, height)
	labels[0] = formatAxis(peak)
	if height > 2 {
		labels[height/2] = formatAxis(peak / 2)
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

func formatAxis(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func xAxisLabels(labels []string, cols int) string {
	if len(labels) == 0 {
		return ""
	}
	first := labels[0]
	if len(labels) == 1 {
		return first
	}
	last := labels[len(labels)-1]
	gap := cols - utf8.RuneCountInString(first) - utf8.RuneCountInString(last)
	if gap < 1 {
		return first + " … " + last
	}
	return first + strings.Repeat(" ", gap) + last
}

// resample stretches or averages values onto n columns.
func resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) == 0 {
		return nil
	}
	if len(values) <= n {
		if len(values) == 1 {
			return []float64{values[0]}
		}
		out := make([]float64, n)
		step := float64(len(values)-1) / float64(n-1)
		for i := range out {
			pos := float64(i) * step
			lo := int(math.Floor(pos))
			if lo >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(lo)
			out[i] = values[lo]*(1-frac) + values[lo+1]*frac
		}
		return out
	}
	out := make([]float64, n)
	for i := range out {
		start := i * len(values) / n
		end := maxInt((i+1)*len(values)/n, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// PlotWidthFor computes how many braille columns fit next to the axis.
func PlotWidthFor(totalWidth, axisWidth int) int {
	if totalWidth <= 0 {
		totalWidth = TerminalWidth()
	}
	cols := totalWidth - axisWidth - utf8.RuneCountInString(axisSeparator)
	if cols < minPlotWidth {
		cols = minPlotWidth
	}
	return cols
}

// TerminalWidth returns the stdout width, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
