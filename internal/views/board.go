package views

import (
	"fmt"
	"strconv"

	"github.com/verte-zerg/lmsdash/internal/model"
)

const placeholder = "—"

// Mount names of the chart slots.
const (
	MountAverages   = "avg-time"
	MountCompletion = "completion"
	MountDevices    = "devices"
	MountTrend      = "trend"
)

// KPI is one summary card.
type KPI struct {
	Title string
	Value string
}

// Board is the rendered state of every view plus the course selector.
// It is not safe for concurrent use; the host event loop owns it.
type Board struct {
	slots map[string]*Slot

	summary   model.Summary
	mostLeast model.MostLeast
	kpiReady  [2]bool

	completionRows model.CompletionTable
	rawRows        []model.RawRecord
	insights       model.Insights

	options  []model.CourseKey
	selected model.CourseKey
	status   string
	version  uint64
}

// NewBoard returns a board with empty views and an "All"-only selector.
func NewBoard() *Board {
	b := &Board{
		slots:    map[string]*Slot{},
		options:  []model.CourseKey{model.AllCourses},
		selected: model.AllCourses,
	}
	for _, mount := range []string{MountAverages, MountCompletion, MountDevices, MountTrend} {
		b.slots[mount] = NewSlot(mount)
	}
	return b
}

// RenderSummaryKPIs updates the user, course, and average-time cards.
func (b *Board) RenderSummaryKPIs(s model.Summary) {
	b.summary = s
	b.kpiReady[0] = true
	b.touch()
}

// RenderTimeKPIs updates the most/least time card.
func (b *Board) RenderTimeKPIs(ml model.MostLeast) {
	b.mostLeast = ml
	b.kpiReady[1] = true
	b.touch()
}

// RenderAverages replaces the bar chart.
func (b *Board) RenderAverages(avgs model.CourseAverages) {
	labels := make([]string, len(avgs))
	values := make([]float64, len(avgs))
	for i, a := range avgs {
		labels[i] = string(a.Course)
		values[i] = a.Minutes
	}
	b.replace(MountAverages, NewChart(BarChart, "Avg time (mins)", labels, values))
}

// RenderCompletionShare replaces the completion status pie chart.
func (b *Board) RenderCompletionShare(counts model.Counts) {
	labels, values := splitCounts(counts)
	b.replace(MountCompletion, NewChart(PieChart, "Completion status", labels, values))
}

// RenderDevices replaces the device usage doughnut chart.
func (b *Board) RenderDevices(counts model.Counts) {
	labels, values := splitCounts(counts)
	b.replace(MountDevices, NewChart(DoughnutChart, "Device usage", labels, values))
}

// RenderTrend replaces the monthly access line chart.
func (b *Board) RenderTrend(series model.TrendSeries) {
	b.replace(MountTrend, NewChart(LineChart, "Access Count", series.Months(), series.Values()))
}

// RenderCompletionTable replaces the completion table rows.
func (b *Board) RenderCompletionTable(rows model.CompletionTable) {
	b.completionRows = append(model.CompletionTable(nil), rows...)
	b.touch()
}

// RenderRawTable replaces the raw record rows.
func (b *Board) RenderRawTable(rows []model.RawRecord) {
	b.rawRows = append([]model.RawRecord(nil), rows...)
	b.touch()
}

// RenderInsights replaces the drop-off and top-performing rankings.
func (b *Board) RenderInsights(in model.Insights) {
	b.insights = in
	b.touch()
}

// SetCourseOptions rebuilds the selector from scratch and selects "All".
func (b *Board) SetCourseOptions(courses []model.CourseKey) {
	b.options = append([]model.CourseKey{model.AllCourses}, courses...)
	b.selected = model.AllCourses
	b.touch()
}

// SetSelected shows course as the selector value.
func (b *Board) SetSelected(course model.CourseKey) {
	if course == "" {
		course = model.AllCourses
	}
	b.selected = course
	b.touch()
}

// SetStatus sets the status line text.
func (b *Board) SetStatus(status string) {
	b.status = status
	b.touch()
}

func (b *Board) replace(mount string, c *Chart) {
	b.slots[mount].Replace(c)
	b.touch()
}

func (b *Board) touch() { b.version++ }

// Version increases on every render call.
func (b *Board) Version() uint64 { return b.version }

// Slot returns the chart slot for mount.
func (b *Board) Slot(mount string) *Slot { return b.slots[mount] }

// CourseOptions returns the selector values, "All" first.
func (b *Board) CourseOptions() []model.CourseKey {
	return append([]model.CourseKey(nil), b.options...)
}

// Selected returns the selector value.
func (b *Board) Selected() model.CourseKey { return b.selected }

// Status returns the status line text.
func (b *Board) Status() string { return b.status }

// AverageLabelAt returns the course of bar i, the target of a bar click.
func (b *Board) AverageLabelAt(i int) (model.CourseKey, bool) {
	c := b.slots[MountAverages].Chart()
	if c == nil {
		return "", false
	}
	labels := c.Labels()
	if i < 0 || i >= len(labels) {
		return "", false
	}
	return model.CourseKey(labels[i]), true
}

// AverageCount returns the number of bars.
func (b *Board) AverageCount() int {
	c := b.slots[MountAverages].Chart()
	if c == nil {
		return 0
	}
	return len(c.Labels())
}

// KPIs returns the summary cards; unknown values show a dash.
func (b *Board) KPIs() []KPI {
	users, popular, avg, mostLeast := placeholder, placeholder, placeholder, placeholder
	if b.kpiReady[0] {
		if b.summary.TotalUsers != nil {
			users = strconv.Itoa(*b.summary.TotalUsers)
		}
		if b.summary.MostPopularCourse != nil && *b.summary.MostPopularCourse != "" {
			popular = *b.summary.MostPopularCourse
		}
		if b.summary.AvgTimeOverall != nil {
			avg = strconv.FormatFloat(*b.summary.AvgTimeOverall, 'f', -1, 64)
		}
	}
	if b.kpiReady[1] && b.mostLeast.MostTimeCourse != "" {
		mostLeast = withMinutes(b.mostLeast.MostTimeCourse, b.mostLeast.MostTimeMinutes) +
			" / " + withMinutes(b.mostLeast.LeastTimeCourse, b.mostLeast.LeastTimeMinutes)
	}
	return []KPI{
		{Title: "Total users", Value: users},
		{Title: "Most popular", Value: popular},
		{Title: "Avg time (mins)", Value: avg},
		{Title: "Most / least time", Value: mostLeast},
	}
}

func withMinutes(course string, minutes *float64) string {
	if minutes == nil {
		return course
	}
	return fmt.Sprintf("%s (%.2f)", course, *minutes)
}

// CompletionHeaders are the completion table columns.
var CompletionHeaders = []string{"Course", "Total", "Completed", "Completion"}

// CompletionRows returns the completion table as display cells.
func (b *Board) CompletionRows() [][]string {
	rows := make([][]string, 0, len(b.completionRows))
	for _, r := range b.completionRows {
		rows = append(rows, []string{
			string(r.Course),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Completed),
			strconv.FormatFloat(r.Percent, 'f', -1, 64) + "%",
		})
	}
	return rows
}

// RawHeaders are the raw table columns.
var RawHeaders = []string{"User", "Course", "Access date", "Status", "Time spent", "Device", "Country"}

// RawRows returns the raw table as display cells.
func (b *Board) RawRows() [][]string {
	rows := make([][]string, 0, len(b.rawRows))
	for _, r := range b.rawRows {
		spent := ""
		if r.TimeSpent != 0 {
			spent = strconv.FormatFloat(r.TimeSpent, 'f', -1, 64)
		}
		rows = append(rows, []string{
			r.UserID,
			string(r.Techno),
			r.AccessDate,
			r.CompletionStatus,
			spent,
			r.Device,
			r.Country,
		})
	}
	return rows
}

// Insights returns the drop-off and top-performing rankings.
func (b *Board) Insights() model.Insights { return b.insights }

func splitCounts(counts model.Counts) ([]string, []float64) {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = c.Value
	}
	return labels, values
}
