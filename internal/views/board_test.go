package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lmsdash/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestBoardKPIPlaceholders(t *testing.T) {
	b := NewBoard()
	for _, k := range b.KPIs() {
		assert.Equal(t, "—", k.Value, k.Title)
	}

	b.RenderSummaryKPIs(model.Summary{TotalUsers: ptr(12), AvgTimeOverall: nil})
	kpis := b.KPIs()
	assert.Equal(t, "12", kpis[0].Value)
	assert.Equal(t, "—", kpis[1].Value)
	assert.Equal(t, "—", kpis[2].Value)
	assert.Equal(t, "—", kpis[3].Value, "most/least renders independently")
}

func TestBoardTimeKPI(t *testing.T) {
	b := NewBoard()
	b.RenderTimeKPIs(model.MostLeast{
		MostTimeCourse:   "Go",
		LeastTimeCourse:  "Rust",
		MostTimeMinutes:  ptr(45.2),
		LeastTimeMinutes: ptr(10.0),
	})
	assert.Equal(t, "Go (45.20) / Rust (10.00)", b.KPIs()[3].Value)

	b.RenderTimeKPIs(model.MostLeast{MostTimeCourse: "Go", LeastTimeCourse: "Rust"})
	assert.Equal(t, "Go / Rust", b.KPIs()[3].Value)
}

func TestBoardChartSlotsHoldOneLiveChart(t *testing.T) {
	b := NewBoard()
	for i := 0; i < 3; i++ {
		b.RenderAverages(model.CourseAverages{{Course: "Go", Minutes: float64(i)}})
		b.RenderCompletionShare(model.Counts{{Label: "completed", Value: 1}})
		b.RenderDevices(model.Counts{{Label: "mobile", Value: 1}})
		b.RenderTrend(model.TrendSeries{{Month: "2024-01", Count: i}})
	}
	for _, mount := range []string{MountAverages, MountCompletion, MountDevices, MountTrend} {
		assert.Equal(t, 1, b.Slot(mount).Live(), mount)
	}
	assert.Equal(t, []float64{2}, b.Slot(MountAverages).Chart().Values())
}

func TestBoardSetCourseOptionsResetsSelection(t *testing.T) {
	b := NewBoard()
	b.SetSelected("Go")
	b.SetCourseOptions([]model.CourseKey{"Python", "Go"})
	assert.Equal(t, []model.CourseKey{model.AllCourses, "Python", "Go"}, b.CourseOptions())
	assert.Equal(t, model.AllCourses, b.Selected())

	b.SetSelected("")
	assert.Equal(t, model.AllCourses, b.Selected())
}

func TestBoardAverageLabelAt(t *testing.T) {
	b := NewBoard()
	_, ok := b.AverageLabelAt(0)
	assert.False(t, ok)

	b.RenderAverages(model.CourseAverages{{Course: "Python", Minutes: 42}, {Course: "Go", Minutes: 30}})
	course, ok := b.AverageLabelAt(1)
	require.True(t, ok)
	assert.Equal(t, model.CourseKey("Go"), course)
	assert.Equal(t, 2, b.AverageCount())

	_, ok = b.AverageLabelAt(2)
	assert.False(t, ok)
}

func TestBoardRowsText(t *testing.T) {
	b := NewBoard()
	b.RenderCompletionTable(model.CompletionTable{{Course: "Go", Total: 4, Completed: 3, Percent: 75}})
	b.RenderRawTable([]model.RawRecord{
		{UserID: "u1", Techno: "Go", AccessDate: "2024-01-02", CompletionStatus: "completed", TimeSpent: 12.5},
		{UserID: "u2", Techno: "Go", AccessDate: "2024-01-03"},
	})

	assert.Equal(t, [][]string{{"Go", "4", "3", "75%"}}, b.CompletionRows())
	raw := b.RawRows()
	require.Len(t, raw, 2)
	assert.Equal(t, "12.5", raw[0][4])
	assert.Equal(t, "", raw[1][4])
}

func TestBoardVersionAdvances(t *testing.T) {
	b := NewBoard()
	v := b.Version()
	b.SetStatus("ok")
	assert.Greater(t, b.Version(), v)
	assert.Equal(t, "ok", b.Status())
}

func TestBoardWriteText(t *testing.T) {
	b := NewBoard()
	b.SetCourseOptions([]model.CourseKey{"Go"})
	b.SetSelected("Go")
	b.RenderAverages(model.CourseAverages{{Course: "Go", Minutes: 30}})
	b.RenderCompletionTable(model.CompletionTable{{Course: "Go", Total: 4, Completed: 3, Percent: 75}})
	b.RenderInsights(model.Insights{DropOffs: model.Counts{{Label: "Go", Value: 1}}})

	var buf bytes.Buffer
	require.NoError(t, b.WriteText(&buf, 60))
	out := buf.String()
	assert.Contains(t, out, "Filter: Go")
	assert.Contains(t, out, "Avg time (mins)")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "Raw records (0)")
	assert.Contains(t, out, "Drop-offs")
	assert.NotContains(t, out, "Access Count", "trend chart not rendered yet")
}
