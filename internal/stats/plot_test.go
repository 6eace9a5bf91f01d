package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotTrend(t *testing.T) {
	var buf bytes.Buffer
	err := PlotTrend(&buf, "Access Count", []string{"2024-01", "2024-02", "2024-03"}, []float64{2, 5, 1}, 40, 4, false)
	if err != nil {
		t.Fatalf("PlotTrend failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 rows and x axis, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Access Count" {
		t.Fatalf("unexpected title line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  5 │ ") {
		t.Fatalf("expected peak label on first row, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "  0 │ ") {
		t.Fatalf("expected zero label on last row, got %q", lines[4])
	}
	if !strings.Contains(lines[5], "2024-01") || !strings.Contains(lines[5], "2024-03") {
		t.Fatalf("expected first and last month on x axis, got %q", lines[5])
	}
	for _, row := range lines[1:5] {
		if utf8.RuneCountInString(row) != 40 {
			t.Fatalf("expected row width 40, got %d: %q", utf8.RuneCountInString(row), row)
		}
	}
}

func TestPlotTrendEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotTrend(&buf, "", nil, nil, 40, 4, false); err != nil {
		t.Fatalf("PlotTrend failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No data." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80, 3); got != 80-3-utf8.RuneCountInString(axisSeparator) {
		t.Fatalf("unexpected width %d", got)
	}
	if got := PlotWidthFor(5, 3); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResample(t *testing.T) {
	if got := resample([]float64{1, 3}, 3); got[1] != 2 {
		t.Fatalf("expected interpolated midpoint, got %v", got)
	}
	if got := resample([]float64{1, 3, 5, 7}, 2); got[0] != 2 || got[1] != 6 {
		t.Fatalf("expected bucket means, got %v", got)
	}
	if got := resample([]float64{4}, 10); len(got) != 1 {
		t.Fatalf("single value should stay a single point, got %v", got)
	}
}
