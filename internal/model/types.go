// Package model defines shared data structures.
package model

import (
	"sort"
	"time"
)

// AllCourses is the filter value meaning no course filter is applied.
const AllCourses CourseKey = "__all"

// CourseKey identifies a course (technology) across every endpoint.
type CourseKey string

// IsAll reports whether k is the unfiltered sentinel.
func (k CourseKey) IsAll() bool {
	return k == AllCourses || k == ""
}

// Label returns the display label for a filter value.
func (k CourseKey) Label() string {
	if k.IsAll() {
		return "All"
	}
	return string(k)
}

// Config defines resolved dashboard settings.
type Config struct {
	BaseURL              string        `validate:"required,url"`
	Timeout              time.Duration `validate:"min=1s"`
	RefreshInterval      time.Duration `validate:"min=1s"`
	RawLimit             int           `validate:"gte=1"`
	DropStale            bool
	ReloadRespectsFilter bool
	LogLevel             string `validate:"oneof=trace debug info warn error"`
	LogFile              string
	MetricsAddr          string `validate:"omitempty,hostname_port"`
}

// CourseAverage is the mean time spent on one course, in minutes.
type CourseAverage struct {
	Course  CourseKey
	Minutes float64
}

// CourseAverages keeps the backend's key order.
type CourseAverages []CourseAverage

// Lookup returns the average for course.
func (a CourseAverages) Lookup(course CourseKey) (float64, bool) {
	for _, avg := range a {
		if avg.Course == course {
			return avg.Minutes, true
		}
	}
	return 0, false
}

// Courses returns the course universe in backend order.
func (a CourseAverages) Courses() []CourseKey {
	out := make([]CourseKey, 0, len(a))
	for _, avg := range a {
		out = append(out, avg.Course)
	}
	return out
}

// CourseCompletion summarizes completions for one course.
type CourseCompletion struct {
	Course    CourseKey
	Total     int
	Completed int
	Percent   float64
}

// CompletionTable keeps the backend's key order.
type CompletionTable []CourseCompletion

// Find returns the row for course.
func (t CompletionTable) Find(course CourseKey) (CourseCompletion, bool) {
	for _, row := range t {
		if row.Course == course {
			return row, true
		}
	}
	return CourseCompletion{}, false
}

// SortedByPercent returns a copy ordered by completion percent, highest first.
func (t CompletionTable) SortedByPercent() CompletionTable {
	out := append(CompletionTable(nil), t...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percent > out[j].Percent
	})
	return out
}

// RawRecord is one LMS access event as served by the backend.
type RawRecord struct {
	UserID           string
	Techno           CourseKey
	AccessDate       string
	CompletionStatus string
	TimeSpent        float64
	Device           string
	Country          string
}

// TrendPoint is the access count for one month.
type TrendPoint struct {
	Month string
	Count int
}

// TrendSeries is an ordered monthly access series.
type TrendSeries []TrendPoint

// Months returns the month labels.
func (s TrendSeries) Months() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Month
	}
	return out
}

// Values returns the counts as floats for plotting.
func (s TrendSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Count)
	}
	return out
}

// MonthlyTrends is the /api/monthly_trends payload.
type MonthlyTrends struct {
	Overall       TrendSeries
	PerCourseTop5 map[CourseKey]TrendSeries
}

// Count is one labelled value of a distribution.
type Count struct {
	Label string
	Value float64
}

// Counts keeps the backend's key order.
type Counts []Count

// Total sums all values.
func (c Counts) Total() float64 {
	var sum float64
	for _, v := range c {
		sum += v.Value
	}
	return sum
}

// Summary holds the global KPIs. Nil fields were null in the payload.
type Summary struct {
	TotalUsers        *int
	MostPopularCourse *string
	AvgTimeOverall    *float64
	CompletionCounts  Counts
}

// MostLeast names the courses with the highest and lowest mean time.
type MostLeast struct {
	MostTimeCourse   string
	LeastTimeCourse  string
	MostTimeMinutes  *float64
	LeastTimeMinutes *float64
}

// Insights holds the per-course drop-off and completion rankings.
type Insights struct {
	DropOffs      Counts
	TopPerforming Counts
}

// RefreshStatus is the /api/refresh acknowledgement.
type RefreshStatus struct {
	Status string
	Rows   int
}
