// Package stats contains the client-side aggregation and text chart drawing.
package stats

import "github.com/verte-zerg/lmsdash/internal/model"

const monthPrefixLen = len("2006-01")

// FallbackTrend counts rows of course per access month. Months appear in the
// order they are first seen in rows, not sorted. Rows whose access date is
// shorter than "YYYY-MM" are skipped.
func FallbackTrend(rows []model.RawRecord, course model.CourseKey) model.TrendSeries {
	out := model.TrendSeries{}
	index := map[string]int{}
	for _, row := range rows {
		if row.Techno != course {
			continue
		}
		if len(row.AccessDate) < monthPrefixLen {
			continue
		}
		month := row.AccessDate[:monthPrefixLen]
		if i, ok := index[month]; ok {
			out[i].Count++
			continue
		}
		index[month] = len(out)
		out = append(out, model.TrendPoint{Month: month, Count: 1})
	}
	return out
}

// FilterRaw returns up to limit rows of course in received order.
func FilterRaw(rows []model.RawRecord, course model.CourseKey, limit int) []model.RawRecord {
	if limit < 0 {
		limit = 0
	}
	out := make([]model.RawRecord, 0, minInt(limit, len(rows)))
	for _, row := range rows {
		if len(out) >= limit {
			break
		}
		if row.Techno == course {
			out = append(out, row)
		}
	}
	return out
}

// FirstRaw returns up to limit rows in received order.
func FirstRaw(rows []model.RawRecord, limit int) []model.RawRecord {
	if limit < 0 {
		limit = 0
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return append([]model.RawRecord(nil), rows...)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
