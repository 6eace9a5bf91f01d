package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/verte-zerg/lmsdash/internal/model"
)

// ViewID names the view a task updates.
type ViewID string

// Views.
const (
	ViewKPIs            ViewID = "kpis"
	ViewAverages        ViewID = "averages"
	ViewCompletionShare ViewID = "completion_share"
	ViewDevices         ViewID = "devices"
	ViewTrend           ViewID = "trend"
	ViewCompletionTable ViewID = "completion_table"
	ViewRawTable        ViewID = "raw_table"
	ViewInsights        ViewID = "insights"
	ViewCourseOptions   ViewID = "course_options"
	ViewRefresh         ViewID = "refresh"
)

// PerCourse reports whether the view follows the selected course. Results
// for other views are never stale.
func (v ViewID) PerCourse() bool {
	switch v {
	case ViewTrend, ViewAverages, ViewCompletionTable, ViewRawTable:
		return true
	default:
		return false
	}
}

// Task is one independent fetch-and-render unit. Run performs I/O only and
// may be called from any goroutine; the Result must go back to
// Controller.Apply on the event loop.
type Task struct {
	View   ViewID
	Course model.CourseKey
	Batch  uuid.UUID
	fn     func(ctx context.Context) Result
}

// Run executes the task and tags the result.
func (t Task) Run(ctx context.Context) Result {
	r := t.fn(ctx)
	r.View = t.View
	r.Course = t.Course
	r.Batch = t.Batch
	return r
}

// Result is a finished task. Err may be a shape-only error, in which case
// the render still applies the decoded defaults.
type Result struct {
	View   ViewID
	Course model.CourseKey
	Batch  uuid.UUID
	Err    error

	render func(Renderer)
	global func(Renderer) // applied even when render is stale
	next   func(*Controller) []Task
}

// Views returns the views touched by tasks, in order.
func Views(tasks []Task) []ViewID {
	out := make([]ViewID, len(tasks))
	for i, t := range tasks {
		out[i] = t.View
	}
	return out
}
