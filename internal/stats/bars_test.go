package stats

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderBarsScalesToPeak(t *testing.T) {
	lines := RenderBars([]string{"Python", "Go"}, []float64{42, 21}, 40, 1, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "  Python ") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "› Go ") {
		t.Fatalf("expected cursor on selected bar, got %q", lines[1])
	}
	full := strings.Count(lines[0], "█")
	half := strings.Count(lines[1], "█")
	if full == 0 || half*2 < full-1 || half*2 > full+1 {
		t.Fatalf("expected second bar half as long: %d vs %d", half, full)
	}
	if !strings.HasSuffix(lines[0], "42.00") || !strings.HasSuffix(lines[1], "21.00") {
		t.Fatalf("expected values at line end: %q %q", lines[0], lines[1])
	}
	if utf8.RuneCountInString(lines[0]) != utf8.RuneCountInString(lines[1]) {
		t.Fatalf("bars should be padded to equal width")
	}
}

func TestRenderBarsEmpty(t *testing.T) {
	lines := RenderBars(nil, nil, 40, -1, false)
	if len(lines) != 1 || lines[0] != "No data." {
		t.Fatalf("unexpected output %v", lines)
	}
}

func TestRenderSharesFillsWidth(t *testing.T) {
	lines := RenderShares([]string{"completed", "in progress", "not started"}, []float64{1, 1, 1}, 20, SharePie, false)
	if len(lines) != 4 {
		t.Fatalf("expected strip plus 3 legend lines, got %d", len(lines))
	}
	if utf8.RuneCountInString(lines[0]) != 20 {
		t.Fatalf("expected strip width 20, got %d", utf8.RuneCountInString(lines[0]))
	}
	if !strings.Contains(lines[1], "completed  33.3% (1)") {
		t.Fatalf("unexpected legend line %q", lines[1])
	}
}

func TestRenderSharesZeroTotal(t *testing.T) {
	lines := RenderShares([]string{"Mobile"}, []float64{0}, 20, ShareDoughnut, false)
	if lines[0] != "No data." {
		t.Fatalf("unexpected output %v", lines)
	}
}

func TestApportionSumsToWidth(t *testing.T) {
	spans := apportion([]float64{1, 2, 3}, 6, 10)
	sum := 0
	for _, n := range spans {
		sum += n
	}
	if sum != 10 {
		t.Fatalf("expected spans to sum to 10, got %v", spans)
	}
}

func TestRenderBarsNegativeValueDrawsNoBar(t *testing.T) {
	lines := RenderBars([]string{"A", "B"}, []float64{10, -2}, 40, -1, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[1], "█") {
		t.Fatalf("negative value should draw no bar: %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "-2.00") {
		t.Fatalf("expected raw value at line end: %q", lines[1])
	}
	if utf8.RuneCountInString(lines[0]) != utf8.RuneCountInString(lines[1]) {
		t.Fatalf("bars should be padded to equal width")
	}

	lines = RenderBars([]string{"A"}, []float64{-5}, 40, -1, false)
	if strings.Contains(lines[0], "█") {
		t.Fatalf("all-negative input should draw no bar: %q", lines[0])
	}
}

func TestRenderSharesIgnoresNegativeValues(t *testing.T) {
	lines := RenderShares([]string{"A", "B"}, []float64{10, -2}, 20, SharePie, false)
	if len(lines) != 3 {
		t.Fatalf("expected strip plus 2 legend lines, got %d", len(lines))
	}
	if utf8.RuneCountInString(lines[0]) != 20 {
		t.Fatalf("expected strip width 20, got %d", utf8.RuneCountInString(lines[0]))
	}
	if !strings.Contains(lines[1], "A 100.0% (10)") || !strings.Contains(lines[2], "B   0.0% (-2)") {
		t.Fatalf("unexpected legend %q %q", lines[1], lines[2])
	}

	lines = RenderShares([]string{"A"}, []float64{-1}, 20, ShareDoughnut, false)
	if lines[0] != "No data." {
		t.Fatalf("expected no data for negative-only input, got %v", lines)
	}
}
