package views

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/lmsdash/internal/model"
	"github.com/verte-zerg/lmsdash/internal/stats"
)

const (
	textTrendHeight = 8
	textCellWidth   = 24
)

// WriteText prints every view as plain text, in dashboard order.
func (b *Board) WriteText(w io.Writer, width int) error {
	if width <= 0 {
		width = stats.TerminalWidth()
	}
	var out []string
	out = append(out, "Filter: "+b.selected.Label())
	if b.status != "" {
		out = append(out, "Status: "+b.status)
	}
	out = append(out, "")

	kpis := b.KPIs()
	rows := make([][]string, len(kpis))
	for i, k := range kpis {
		rows[i] = []string{k.Title, k.Value}
	}
	out = append(out, section("KPIs")...)
	out = append(out, stats.FormatTable([]string{"Metric", "Value"}, rows, nil, 0)...)

	for _, mount := range []string{MountAverages, MountCompletion, MountDevices, MountTrend} {
		c := b.slots[mount].Chart()
		if c == nil {
			continue
		}
		out = append(out, "")
		out = append(out, section(c.Title())...)
		out = append(out, c.Lines(width, textTrendHeight, -1, false)...)
	}

	out = append(out, "")
	out = append(out, section("Completion")...)
	out = append(out, tableOrEmpty(CompletionHeaders, b.CompletionRows(), map[int]bool{1: true, 2: true, 3: true})...)

	out = append(out, "")
	out = append(out, section(fmt.Sprintf("Raw records (%d)", len(b.rawRows)))...)
	out = append(out, tableOrEmpty(RawHeaders, b.RawRows(), map[int]bool{4: true})...)

	out = append(out, "")
	out = append(out, section("Drop-offs")...)
	out = append(out, countsTable("Course", "Drop-offs", b.insights.DropOffs)...)
	out = append(out, "")
	out = append(out, section("Top performing")...)
	out = append(out, countsTable("Course", "Completed", b.insights.TopPerforming)...)

	_, err := io.WriteString(w, strings.Join(out, "\n")+"\n")
	return err
}

func section(title string) []string {
	return []string{title, strings.Repeat("─", len([]rune(title)))}
}

func tableOrEmpty(headers []string, rows [][]string, right map[int]bool) []string {
	if len(rows) == 0 {
		return []string{"No data."}
	}
	return stats.FormatTable(headers, rows, right, textCellWidth)
}

func countsTable(labelHeader, valueHeader string, counts model.Counts) []string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Label, strconv.FormatFloat(c.Value, 'f', -1, 64)}
	}
	return tableOrEmpty([]string{labelHeader, valueHeader}, rows, map[int]bool{1: true})
}
