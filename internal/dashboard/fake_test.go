package dashboard

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/verte-zerg/lmsdash/internal/api"
	"github.com/verte-zerg/lmsdash/internal/model"
)

var errDown = &api.NetworkError{Path: "/api/raw", Status: 503, Err: errors.New("Service Unavailable")}

func ptr[T any](v T) *T { return &v }

type fakeSource struct {
	summary    model.Summary
	mostLeast  model.MostLeast
	averages   model.CourseAverages
	devices    model.Counts
	trends     model.MonthlyTrends
	completion model.CompletionTable
	raw        []model.RawRecord
	dropOffs   model.Counts
	top        model.Counts
	refresh    model.RefreshStatus

	errs map[string]error

	// rawStarted, when set, makes RawRecords report on it and block until
	// its context ends.
	rawStarted chan struct{}

	rawCalls     atomic.Int32
	refreshCalls atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		summary: model.Summary{
			TotalUsers:        ptr(3),
			MostPopularCourse: ptr("Python"),
			AvgTimeOverall:    ptr(36.5),
			CompletionCounts:  model.Counts{{Label: "completed", Value: 2}, {Label: "in_progress", Value: 1}},
		},
		mostLeast: model.MostLeast{MostTimeCourse: "Python", LeastTimeCourse: "Go", MostTimeMinutes: ptr(42.0), LeastTimeMinutes: ptr(30.0)},
		averages:  model.CourseAverages{{Course: "Python", Minutes: 42}, {Course: "Go", Minutes: 30}},
		devices:   model.Counts{{Label: "desktop", Value: 2}, {Label: "mobile", Value: 1}},
		trends: model.MonthlyTrends{
			Overall: model.TrendSeries{{Month: "2024-01", Count: 2}, {Month: "2024-02", Count: 2}},
			PerCourseTop5: map[model.CourseKey]model.TrendSeries{
				"Python": {{Month: "2024-01", Count: 1}, {Month: "2024-02", Count: 1}},
			},
		},
		completion: model.CompletionTable{
			{Course: "Go", Total: 2, Completed: 1, Percent: 50},
			{Course: "Python", Total: 2, Completed: 2, Percent: 100},
		},
		raw: []model.RawRecord{
			{UserID: "1", Techno: "Python", AccessDate: "2024-01-03", CompletionStatus: "completed", TimeSpent: 40},
			{UserID: "2", Techno: "Go", AccessDate: "2024-01-15", CompletionStatus: "completed", TimeSpent: 30},
			{UserID: "3", Techno: "Go", AccessDate: "2024-02-01", CompletionStatus: "in_progress", TimeSpent: 30},
			{UserID: "4", Techno: "Python", AccessDate: "2024-02-09", CompletionStatus: "completed", TimeSpent: 44},
			{UserID: "5", Techno: "Rust", AccessDate: "2024-03-09", CompletionStatus: "in_progress", TimeSpent: 5},
		},
		dropOffs: model.Counts{{Label: "Go", Value: 1}, {Label: "Rust", Value: 1}},
		top:      model.Counts{{Label: "Python", Value: 2}, {Label: "Go", Value: 1}},
		refresh:  model.RefreshStatus{Status: "ok", Rows: 5},
		errs:     map[string]error{},
	}
}

func (f *fakeSource) Summary(context.Context) (model.Summary, error) {
	return f.summary, f.errs[api.PathSummary]
}

func (f *fakeSource) MostLeast(context.Context) (model.MostLeast, error) {
	return f.mostLeast, f.errs[api.PathMostLeast]
}

func (f *fakeSource) AverageTimes(context.Context) (model.CourseAverages, error) {
	return f.averages, f.errs[api.PathAverages]
}

func (f *fakeSource) DeviceUsage(context.Context) (model.Counts, error) {
	return f.devices, f.errs[api.PathDevices]
}

func (f *fakeSource) MonthlyTrends(context.Context) (model.MonthlyTrends, error) {
	return f.trends, f.errs[api.PathTrends]
}

func (f *fakeSource) CompletionPercentages(context.Context) (model.CompletionTable, error) {
	return f.completion, f.errs[api.PathCompletion]
}

func (f *fakeSource) RawRecords(ctx context.Context) ([]model.RawRecord, error) {
	f.rawCalls.Add(1)
	if f.rawStarted != nil {
		select {
		case f.rawStarted <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.errs[api.PathRaw]; err != nil {
		return nil, err
	}
	return f.raw, nil
}

func (f *fakeSource) DropOffs(context.Context) (model.Counts, error) {
	return f.dropOffs, f.errs[api.PathDropOffs]
}

func (f *fakeSource) TopPerforming(context.Context) (model.Counts, error) {
	return f.top, f.errs[api.PathTopPerforming]
}

func (f *fakeSource) Refresh(context.Context) (model.RefreshStatus, error) {
	f.refreshCalls.Add(1)
	return f.refresh, f.errs[api.PathRefresh]
}
