package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatTable aligns rows under headers. Cells wider than maxCell are
// truncated with an ellipsis; maxCell <= 0 disables truncation.
func FormatTable(headers []string, rows [][]string, rightAlignCols map[int]bool, maxCell int) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = maxInt(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	clip := func(s string) string {
		if maxCell > 0 {
			return runewidth.Truncate(s, maxCell, "…")
		}
		return s
	}
	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(clip(header))
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = maxInt(widths[i], runewidth.StringWidth(clip(cell)))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols, clip))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols, clip))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool, clip func(string) string) string {
	var b strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = clip(row[i])
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		if rightAlignCols[i] {
			b.WriteString(runewidth.FillLeft(cell, width))
		} else {
			b.WriteString(runewidth.FillRight(cell, width))
		}
	}
	return strings.TrimRight(b.String(), " ")
}
