package dashboard

import "github.com/verte-zerg/lmsdash/internal/model"

// FilterState is the course every per-course view should reflect.
type FilterState struct {
	current model.CourseKey
}

func newFilterState() FilterState {
	return FilterState{current: model.AllCourses}
}

// Current returns the selected course, or model.AllCourses.
func (s FilterState) Current() model.CourseKey { return s.current }

func (s *FilterState) set(course model.CourseKey) {
	if course == "" {
		course = model.AllCourses
	}
	s.current = course
}
