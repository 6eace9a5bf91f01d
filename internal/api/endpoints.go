package api

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/verte-zerg/lmsdash/internal/model"
)

// Backend endpoint paths.
const (
	PathSummary       = "/api/summary"
	PathMostLeast     = "/api/most_least_time"
	PathAverages      = "/api/avg_time_per_course"
	PathDevices       = "/api/device_usage"
	PathTrends        = "/api/monthly_trends"
	PathCompletion    = "/api/course_completion_percentages"
	PathRaw           = "/api/raw"
	PathDropOffs      = "/api/drop_offs"
	PathTopPerforming = "/api/top_performing"
	PathRefresh       = "/api/refresh"
)

func fetchDecoded[T any](ctx context.Context, c *Client, path string, decode func(string, gjson.Result) (T, error)) (T, error) {
	doc, err := c.fetchDoc(ctx, path)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(path, doc)
}

// Summary fetches the global KPIs and completion counts.
func (c *Client) Summary(ctx context.Context) (model.Summary, error) {
	return fetchDecoded(ctx, c, PathSummary, decodeSummary)
}

// MostLeast fetches the courses with the most and least mean time.
func (c *Client) MostLeast(ctx context.Context) (model.MostLeast, error) {
	return fetchDecoded(ctx, c, PathMostLeast, decodeMostLeast)
}

// AverageTimes fetches mean minutes per course in backend order.
func (c *Client) AverageTimes(ctx context.Context) (model.CourseAverages, error) {
	return fetchDecoded(ctx, c, PathAverages, decodeAverages)
}

// DeviceUsage fetches access counts per device.
func (c *Client) DeviceUsage(ctx context.Context) (model.Counts, error) {
	return fetchDecoded(ctx, c, PathDevices, decodeCounts)
}

// MonthlyTrends fetches the overall and top-5 per-course monthly series.
func (c *Client) MonthlyTrends(ctx context.Context) (model.MonthlyTrends, error) {
	return fetchDecoded(ctx, c, PathTrends, decodeMonthlyTrends)
}

// CompletionPercentages fetches per-course completion summaries.
func (c *Client) CompletionPercentages(ctx context.Context) (model.CompletionTable, error) {
	return fetchDecoded(ctx, c, PathCompletion, decodeCompletion)
}

// RawRecords fetches every raw access record.
func (c *Client) RawRecords(ctx context.Context) ([]model.RawRecord, error) {
	return fetchDecoded(ctx, c, PathRaw, decodeRaw)
}

// DropOffs fetches non-completed record counts per course.
func (c *Client) DropOffs(ctx context.Context) (model.Counts, error) {
	return fetchDecoded(ctx, c, PathDropOffs, decodeDropOffs)
}

// TopPerforming fetches completed record counts per course.
func (c *Client) TopPerforming(ctx context.Context) (model.Counts, error) {
	return fetchDecoded(ctx, c, PathTopPerforming, decodeCounts)
}

type refreshResponse struct {
	Status string `json:"status"`
	Rows   int    `json:"rows"`
}

// Refresh asks the backend to reload its data set.
func (c *Client) Refresh(ctx context.Context) (model.RefreshStatus, error) {
	resp, err := FetchJSON[refreshResponse](ctx, c, PathRefresh)
	if err != nil {
		return model.RefreshStatus{}, err
	}
	return model.RefreshStatus{Status: resp.Status, Rows: resp.Rows}, nil
}
