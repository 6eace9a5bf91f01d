package api

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/verte-zerg/lmsdash/internal/model"
)

// shape collects DataShapeErrors for one payload.
type shape struct {
	path string
	errs []error
}

func (s *shape) missing(key string) {
	s.errs = append(s.errs, &DataShapeError{Path: s.path, Key: key})
}

func (s *shape) wrongType(key, want string) {
	s.errs = append(s.errs, &DataShapeError{Path: s.path, Key: key, Want: want})
}

func (s *shape) err() error {
	return errors.Join(s.errs...)
}

// object returns v if it is a JSON object. Missing and mistyped values are
// recorded and reported as absent.
func (s *shape) object(key string, v gjson.Result) (gjson.Result, bool) {
	if !v.Exists() {
		s.missing(key)
		return gjson.Result{}, false
	}
	if !v.IsObject() {
		s.wrongType(key, "an object")
		return gjson.Result{}, false
	}
	return v, true
}

func (s *shape) number(key string, v gjson.Result) float64 {
	if !v.Exists() {
		s.missing(key)
		return 0
	}
	if v.Type != gjson.Number {
		s.wrongType(key, "a number")
		return 0
	}
	return v.Float()
}

// nullableNumber treats JSON null as a legitimate "no value".
func (s *shape) nullableNumber(key string, v gjson.Result) *float64 {
	if !v.Exists() {
		s.missing(key)
		return nil
	}
	if v.Type == gjson.Null {
		return nil
	}
	if v.Type != gjson.Number {
		s.wrongType(key, "a number")
		return nil
	}
	f := v.Float()
	return &f
}

func (s *shape) nullableString(key string, v gjson.Result) *string {
	if !v.Exists() {
		s.missing(key)
		return nil
	}
	if v.Type == gjson.Null {
		return nil
	}
	str := v.String()
	return &str
}

// counts decodes an object of label -> number in document order.
func (s *shape) counts(key string, v gjson.Result) model.Counts {
	obj, ok := s.object(key, v)
	if !ok {
		return model.Counts{}
	}
	out := model.Counts{}
	obj.ForEach(func(label, value gjson.Result) bool {
		out = append(out, model.Count{Label: label.String(), Value: s.number(key+"."+label.String(), value)})
		return true
	})
	return out
}

// series decodes an object of "YYYY-MM" -> count in document order.
func (s *shape) series(key string, v gjson.Result) model.TrendSeries {
	obj, ok := s.object(key, v)
	if !ok {
		return model.TrendSeries{}
	}
	out := model.TrendSeries{}
	obj.ForEach(func(month, value gjson.Result) bool {
		out = append(out, model.TrendPoint{Month: month.String(), Count: int(s.number(key+"."+month.String(), value))})
		return true
	})
	return out
}

func decodeSummary(path string, doc gjson.Result) (model.Summary, error) {
	s := &shape{path: path}
	var out model.Summary
	if users := s.nullableNumber("total_users", doc.Get("total_users")); users != nil {
		n := int(*users)
		out.TotalUsers = &n
	}
	out.MostPopularCourse = s.nullableString("most_popular_course", doc.Get("most_popular_course"))
	out.AvgTimeOverall = s.nullableNumber("avg_time_overall", doc.Get("avg_time_overall"))
	out.CompletionCounts = s.counts("completion_counts", doc.Get("completion_counts"))
	return out, s.err()
}

func decodeMostLeast(path string, doc gjson.Result) (model.MostLeast, error) {
	s := &shape{path: path}
	var out model.MostLeast
	if v := s.nullableString("most_time_course", doc.Get("most_time_course")); v != nil {
		out.MostTimeCourse = *v
	}
	if v := s.nullableString("least_time_course", doc.Get("least_time_course")); v != nil {
		out.LeastTimeCourse = *v
	}
	// Minutes were added to the payload later; absence is not a shape problem.
	if v := doc.Get("most_time_minutes"); v.Type == gjson.Number {
		f := v.Float()
		out.MostTimeMinutes = &f
	}
	if v := doc.Get("least_time_minutes"); v.Type == gjson.Number {
		f := v.Float()
		out.LeastTimeMinutes = &f
	}
	return out, s.err()
}

func decodeAverages(path string, doc gjson.Result) (model.CourseAverages, error) {
	s := &shape{path: path}
	counts := s.counts("$", doc)
	out := make(model.CourseAverages, 0, len(counts))
	for _, c := range counts {
		out = append(out, model.CourseAverage{Course: model.CourseKey(c.Label), Minutes: c.Value})
	}
	return out, s.err()
}

func decodeCounts(path string, doc gjson.Result) (model.Counts, error) {
	s := &shape{path: path}
	out := s.counts("$", doc)
	return out, s.err()
}

func decodeDropOffs(path string, doc gjson.Result) (model.Counts, error) {
	s := &shape{path: path}
	out := s.counts("drop_off_counts", doc.Get("drop_off_counts"))
	return out, s.err()
}

func decodeMonthlyTrends(path string, doc gjson.Result) (model.MonthlyTrends, error) {
	s := &shape{path: path}
	out := model.MonthlyTrends{
		Overall:       s.series("overall", doc.Get("overall")),
		PerCourseTop5: map[model.CourseKey]model.TrendSeries{},
	}
	if per, ok := s.object("per_course_top5", doc.Get("per_course_top5")); ok {
		per.ForEach(func(course, value gjson.Result) bool {
			out.PerCourseTop5[model.CourseKey(course.String())] = s.series("per_course_top5."+course.String(), value)
			return true
		})
	}
	return out, s.err()
}

func decodeCompletion(path string, doc gjson.Result) (model.CompletionTable, error) {
	s := &shape{path: path}
	out := model.CompletionTable{}
	obj, ok := s.object("$", doc)
	if !ok {
		return out, s.err()
	}
	obj.ForEach(func(course, value gjson.Result) bool {
		key := course.String()
		out = append(out, model.CourseCompletion{
			Course:    model.CourseKey(key),
			Total:     int(s.number(key+".total", value.Get("total"))),
			Completed: int(s.number(key+".completed", value.Get("completed"))),
			Percent:   s.number(key+".completion_percent", value.Get("completion_percent")),
		})
		return true
	})
	return out, s.err()
}

func decodeRaw(path string, doc gjson.Result) ([]model.RawRecord, error) {
	s := &shape{path: path}
	if !doc.IsArray() {
		s.wrongType("$", "an array")
		return []model.RawRecord{}, s.err()
	}
	rows := doc.Array()
	out := make([]model.RawRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.RawRecord{
			UserID:           row.Get("userid").String(),
			Techno:           model.CourseKey(row.Get("techno").String()),
			AccessDate:       row.Get("accessdate").String(),
			CompletionStatus: row.Get("completionstatus").String(),
			TimeSpent:        row.Get("time_spent").Float(),
			Device:           row.Get("device").String(),
			Country:          row.Get("country").String(),
		})
	}
	return out, s.err()
}
