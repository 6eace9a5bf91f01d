package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/lmsdash/internal/model"
)

func rec(course, date string) model.RawRecord {
	return model.RawRecord{Techno: model.CourseKey(course), AccessDate: date}
}

func TestFallbackTrendFirstSeenOrder(t *testing.T) {
	rows := []model.RawRecord{
		rec("Go", "2024-01-15"),
		rec("Go", "2024-01-20"),
		rec("Go", "2024-02-01"),
	}
	got := FallbackTrend(rows, "Go")
	assert.Equal(t, model.TrendSeries{{Month: "2024-01", Count: 2}, {Month: "2024-02", Count: 1}}, got)
}

func TestFallbackTrendKeepsUnsortedOrder(t *testing.T) {
	rows := []model.RawRecord{
		rec("Go", "2024-03-02 00:00:00"),
		rec("Go", "2024-01-20 00:00:00"),
		rec("Go", "2024-03-09 00:00:00"),
	}
	got := FallbackTrend(rows, "Go")
	assert.Equal(t, model.TrendSeries{{Month: "2024-03", Count: 2}, {Month: "2024-01", Count: 1}}, got)
}

func TestFallbackTrendOnlyCountsMatchingCourse(t *testing.T) {
	rows := []model.RawRecord{
		rec("Go", "2024-01-15"),
		rec("Python", "2024-01-15"),
		rec("Python", "2024-05-15"),
		rec("Go", "2024-01-31"),
	}
	got := FallbackTrend(rows, "Go")
	assert.Equal(t, model.TrendSeries{{Month: "2024-01", Count: 2}}, got)

	var total int
	for _, p := range FallbackTrend(rows, "Python") {
		total += p.Count
	}
	assert.Equal(t, 2, total)
}

func TestFallbackTrendSkipsShortDates(t *testing.T) {
	rows := []model.RawRecord{
		rec("Go", ""),
		rec("Go", "NaT"),
		rec("Go", "2024-1"),
		rec("Go", "2024-11"),
	}
	got := FallbackTrend(rows, "Go")
	assert.Equal(t, model.TrendSeries{{Month: "2024-11", Count: 1}}, got)
}

func TestFallbackTrendNoMatchesIsEmptyNotNil(t *testing.T) {
	got := FallbackTrend([]model.RawRecord{rec("Go", "2024-01-01")}, "Rust")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, FallbackTrend(nil, "Rust"))
}

func TestFilterRawTruncatesInReceivedOrder(t *testing.T) {
	var rows []model.RawRecord
	for i := 0; i < 300; i++ {
		course := "Go"
		if i%2 == 1 {
			course = "Python"
		}
		rows = append(rows, model.RawRecord{Techno: model.CourseKey(course), UserID: string(rune('a' + i%26))})
	}
	got := FilterRaw(rows, "Go", 100)
	assert.Len(t, got, 100)
	assert.Equal(t, rows[0], got[0])
	assert.Equal(t, rows[2], got[1])
	for _, r := range got {
		assert.Equal(t, model.CourseKey("Go"), r.Techno)
	}

	assert.Len(t, FilterRaw(rows, "Go", 200), 150)
	assert.Empty(t, FilterRaw(rows, "Rust", 200))
}

func TestFirstRaw(t *testing.T) {
	rows := []model.RawRecord{rec("a", ""), rec("b", ""), rec("c", "")}
	assert.Len(t, FirstRaw(rows, 2), 2)
	assert.Len(t, FirstRaw(rows, 10), 3)
	assert.Empty(t, FirstRaw(rows, 0))
}
