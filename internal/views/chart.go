// Package views holds the rendered state of every dashboard view.
package views

import (
	"bytes"
	"strings"

	"github.com/verte-zerg/lmsdash/internal/stats"
)

// ChartKind selects how a chart is drawn.
type ChartKind int

// Chart kinds.
const (
	BarChart ChartKind = iota
	PieChart
	DoughnutChart
	LineChart
)

// Chart is one drawable chart instance. It is created for a single render
// and destroyed when its slot receives a replacement.
type Chart struct {
	kind      ChartKind
	title     string
	labels    []string
	values    []float64
	destroyed bool
}

// NewChart copies labels and values into a new chart.
func NewChart(kind ChartKind, title string, labels []string, values []float64) *Chart {
	return &Chart{
		kind:   kind,
		title:  title,
		labels: append([]string(nil), labels...),
		values: append([]float64(nil), values...),
	}
}

// Kind returns the chart kind.
func (c *Chart) Kind() ChartKind { return c.kind }

// Title returns the chart title.
func (c *Chart) Title() string { return c.title }

// Labels returns a copy of the chart labels.
func (c *Chart) Labels() []string { return append([]string(nil), c.labels...) }

// Values returns a copy of the chart values.
func (c *Chart) Values() []float64 { return append([]float64(nil), c.values...) }

// Destroy releases the chart; a destroyed chart draws nothing.
func (c *Chart) Destroy() {
	c.destroyed = true
	c.labels = nil
	c.values = nil
}

// Destroyed reports whether Destroy was called.
func (c *Chart) Destroyed() bool { return c.destroyed }

// Lines draws the chart. selected marks a bar and is ignored by other kinds.
func (c *Chart) Lines(width, height, selected int, useColor bool) []string {
	if c == nil || c.destroyed {
		return nil
	}
	switch c.kind {
	case BarChart:
		return stats.RenderBars(c.labels, c.values, width, selected, useColor)
	case PieChart:
		return stats.RenderShares(c.labels, c.values, width, stats.SharePie, useColor)
	case DoughnutChart:
		return stats.RenderShares(c.labels, c.values, width, stats.ShareDoughnut, useColor)
	case LineChart:
		var buf bytes.Buffer
		if err := stats.PlotTrend(&buf, "", c.labels, c.values, width, height, useColor); err != nil {
			return []string{"Failed to draw chart: " + err.Error()}
		}
		return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	default:
		return nil
	}
}

// Slot owns the single live chart bound to one mount point.
type Slot struct {
	mount   string
	current *Chart
	live    int
}

// NewSlot returns an empty slot for mount.
func NewSlot(mount string) *Slot {
	return &Slot{mount: mount}
}

// Replace destroys the current chart, if any, then installs next.
func (s *Slot) Replace(next *Chart) {
	if s.current != nil {
		s.current.Destroy()
		s.live--
	}
	s.current = next
	if next != nil {
		s.live++
	}
}

// Chart returns the live chart, or nil before the first render.
func (s *Slot) Chart() *Chart { return s.current }

// Live returns the number of undestroyed charts owned by the slot.
func (s *Slot) Live() int { return s.live }

// Mount returns the slot name.
func (s *Slot) Mount() string { return s.mount }
