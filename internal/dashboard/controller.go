// Package dashboard keeps every view consistent with the selected course.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/lmsdash/internal/api"
	"github.com/verte-zerg/lmsdash/internal/model"
	"github.com/verte-zerg/lmsdash/internal/stats"
)

// DefaultRawLimit is the number of raw rows shown.
const DefaultRawLimit = 200

// Source is the backend as seen by the controller. *api.Client implements it.
type Source interface {
	Summary(ctx context.Context) (model.Summary, error)
	MostLeast(ctx context.Context) (model.MostLeast, error)
	AverageTimes(ctx context.Context) (model.CourseAverages, error)
	DeviceUsage(ctx context.Context) (model.Counts, error)
	MonthlyTrends(ctx context.Context) (model.MonthlyTrends, error)
	CompletionPercentages(ctx context.Context) (model.CompletionTable, error)
	RawRecords(ctx context.Context) ([]model.RawRecord, error)
	DropOffs(ctx context.Context) (model.Counts, error)
	TopPerforming(ctx context.Context) (model.Counts, error)
	Refresh(ctx context.Context) (model.RefreshStatus, error)
}

// Renderer draws views. Implementations never read the filter state.
type Renderer interface {
	RenderSummaryKPIs(model.Summary)
	RenderTimeKPIs(model.MostLeast)
	RenderAverages(model.CourseAverages)
	RenderCompletionShare(model.Counts)
	RenderDevices(model.Counts)
	RenderTrend(model.TrendSeries)
	RenderCompletionTable(model.CompletionTable)
	RenderRawTable([]model.RawRecord)
	RenderInsights(model.Insights)
	SetCourseOptions([]model.CourseKey)
	SetSelected(model.CourseKey)
	SetStatus(string)
}

// Options tunes controller behavior.
type Options struct {
	RawLimit             int
	DropStale            bool
	ReloadRespectsFilter bool
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{RawLimit: DefaultRawLimit, DropStale: true}
}

// Controller owns the filter state. All methods except Task.Run must be
// called from one goroutine.
type Controller struct {
	src      Source
	renderer Renderer
	logger   zerolog.Logger
	metrics  *Metrics
	opts     Options

	state    FilterState
	failures map[ViewID]error
}

// New returns a controller with the filter set to all courses.
func New(src Source, renderer Renderer, logger zerolog.Logger, metrics *Metrics, opts Options) *Controller {
	if opts.RawLimit <= 0 {
		opts.RawLimit = DefaultRawLimit
	}
	return &Controller{
		src:      src,
		renderer: renderer,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
		state:    newFilterState(),
		failures: map[ViewID]error{},
	}
}

// Current returns the selected course.
func (c *Controller) Current() model.CourseKey { return c.state.Current() }

// Failures returns the views whose latest result failed.
func (c *Controller) Failures() int { return len(c.failures) }

// SetFilter selects course and returns the tasks that bring the views in
// line with it. KPIs and the share charts are left as they are.
func (c *Controller) SetFilter(course model.CourseKey) []Task {
	c.state.set(course)
	course = c.state.Current()
	c.renderer.SetSelected(course)
	if course.IsAll() {
		return c.LoadAll()
	}
	batch := uuid.New()
	c.logger.Debug().Str("course", string(course)).Str("batch", batch.String()).Msg("filter changed")
	return []Task{
		c.courseTrendTask(course, batch),
		c.courseAverageTask(course, batch),
		c.courseCompletionTask(course, batch),
		c.courseRawTask(course, batch),
	}
}

// Clear resets the filter to all courses.
func (c *Controller) Clear() []Task {
	return c.SetFilter(model.AllCourses)
}

// LoadAll resets the filter and reloads every view unfiltered.
func (c *Controller) LoadAll() []Task {
	c.state.set(model.AllCourses)
	c.renderer.SetSelected(model.AllCourses)
	batch := uuid.New()
	c.logger.Debug().Str("batch", batch.String()).Msg("loading all views")
	return []Task{
		c.kpiTask(batch),
		c.averagesTask(batch),
		c.completionShareTask(batch),
		c.devicesTask(batch),
		c.overallTrendTask(batch),
		c.completionTableTask(batch),
		c.rawTableTask(batch),
		c.insightsTask(batch),
	}
}

// Refresh asks the backend to reload, then reloads every view.
func (c *Controller) Refresh() []Task {
	batch := uuid.New()
	return []Task{c.newTask(ViewRefresh, c.state.Current(), batch, func(ctx context.Context) Result {
		st, err := c.src.Refresh(ctx)
		if err != nil {
			return Result{Err: err}
		}
		return Result{
			render: func(r Renderer) {
				r.SetStatus(fmt.Sprintf("refresh %s (%d rows)", st.Status, st.Rows))
			},
			next: func(c *Controller) []Task { return c.LoadAll() },
		}
	})}
}

// Reload is the auto-reload timer action. When it keeps a course filter it
// also reloads the views a filter never touches.
func (c *Controller) Reload() []Task {
	course := c.state.Current()
	if !c.opts.ReloadRespectsFilter || course.IsAll() {
		return c.SetFilter(model.AllCourses)
	}
	tasks := c.SetFilter(course)
	return append(tasks, c.globalTasks(tasks[0].Batch)...)
}

// Apply renders r unless it is stale and returns any follow-up tasks.
func (c *Controller) Apply(r Result) []Task {
	log := c.logger.With().Str("view", string(r.View)).Str("course", string(r.Course)).Str("batch", r.Batch.String()).Logger()
	if c.stale(r) {
		log.Debug().Str("current", string(c.state.Current())).Msg("dropping stale result")
		c.metrics.recordResult(r.View, OutcomeStale)
		c.applyGlobal(r)
		return nil
	}
	if r.Err != nil {
		if api.IsShapeOnly(r.Err) {
			log.Warn().Err(r.Err).Msg("unexpected payload shape, rendering defaults")
		} else {
			log.Warn().Err(r.Err).Msg("view update failed")
			c.failures[r.View] = r.Err
			c.metrics.recordResult(r.View, OutcomeFailed)
			// A partial render (KPIs) may still apply.
			if r.render != nil {
				r.render(c.renderer)
			}
			return nil
		}
	}
	delete(c.failures, r.View)
	c.metrics.recordResult(r.View, OutcomeApplied)
	if r.render != nil {
		r.render(c.renderer)
	}
	c.applyGlobal(r)
	if r.next != nil {
		return r.next(c)
	}
	return nil
}

func (c *Controller) stale(r Result) bool {
	return c.opts.DropStale && r.View.PerCourse() && r.Course != c.state.Current()
}

// applyGlobal runs the filter-independent half of r. Rebuilding the course
// options resets the selector, so the current course is shown again.
func (c *Controller) applyGlobal(r Result) {
	if r.global == nil {
		return
	}
	r.global(c.renderer)
	c.renderer.SetSelected(c.state.Current())
}

func (c *Controller) newTask(view ViewID, course model.CourseKey, batch uuid.UUID, fn func(ctx context.Context) Result) Task {
	return Task{View: view, Course: course, Batch: batch, fn: fn}
}

// usable reports whether a fetch produced a value worth rendering.
func usable(err error) bool {
	return err == nil || api.IsShapeOnly(err)
}

func (c *Controller) kpiTask(batch uuid.UUID) Task {
	return c.newTask(ViewKPIs, model.AllCourses, batch, func(ctx context.Context) Result {
		summary, sumErr := c.src.Summary(ctx)
		ml, mlErr := c.src.MostLeast(ctx)
		var renders []func(Renderer)
		if usable(sumErr) {
			renders = append(renders, func(r Renderer) { r.RenderSummaryKPIs(summary) })
		}
		if usable(mlErr) {
			renders = append(renders, func(r Renderer) { r.RenderTimeKPIs(ml) })
		}
		res := Result{Err: errors.Join(sumErr, mlErr)}
		if len(renders) > 0 {
			res.render = func(r Renderer) {
				for _, fn := range renders {
					fn(r)
				}
			}
		}
		return res
	})
}

func (c *Controller) averagesTask(batch uuid.UUID) Task {
	return c.newTask(ViewAverages, model.AllCourses, batch, func(ctx context.Context) Result {
		avgs, err := c.src.AverageTimes(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		return Result{
			Err:    err,
			render: func(r Renderer) { r.RenderAverages(avgs) },
			global: func(r Renderer) { r.SetCourseOptions(avgs.Courses()) },
		}
	})
}

func (c *Controller) courseOptionsTask(batch uuid.UUID) Task {
	return c.newTask(ViewCourseOptions, model.AllCourses, batch, func(ctx context.Context) Result {
		avgs, err := c.src.AverageTimes(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		return Result{Err: err, global: func(r Renderer) { r.SetCourseOptions(avgs.Courses()) }}
	})
}

// globalTasks reload every view that does not follow the course filter.
func (c *Controller) globalTasks(batch uuid.UUID) []Task {
	return []Task{
		c.kpiTask(batch),
		c.completionShareTask(batch),
		c.devicesTask(batch),
		c.insightsTask(batch),
		c.courseOptionsTask(batch),
	}
}

func (c *Controller) completionShareTask(batch uuid.UUID) Task {
	return c.newTask(ViewCompletionShare, model.AllCourses, batch, func(ctx context.Context) Result {
		summary, err := c.src.Summary(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		return Result{Err: err, render: func(r Renderer) { r.RenderCompletionShare(summary.CompletionCounts) }}
	})
}

func (c *Controller) devicesTask(batch uuid.UUID) Task {
	return c.newTask(ViewDevices, model.AllCourses, batch, func(ctx context.Context) Result {
		devices, err := c.src.DeviceUsage(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		return Result{Err: err, render: func(r Renderer) { r.RenderDevices(devices) }}
	})
}

func (c *Controller) overallTrendTask(batch uuid.UUID) Task {
	return c.newTask(ViewTrend, model.AllCourses, batch, func(ctx context.Context) Result {
		trends, err := c.src.MonthlyTrends(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		return Result{Err: err, render: func(r Renderer) { r.RenderTrend(trends.Overall) }}
	})
}

func (c *Controller) completionTableTask(batch uuid.UUID) Task {
	return c.newTask(ViewCompletionTable, model.AllCourses, batch, func(ctx context.Context) Result {
		table, err := c.src.CompletionPercentages(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		sorted := table.SortedByPercent()
		return Result{Err: err, render: func(r Renderer) { r.RenderCompletionTable(sorted) }}
	})
}

func (c *Controller) rawTableTask(batch uuid.UUID) Task {
	return c.newTask(ViewRawTable, model.AllCourses, batch, func(ctx context.Context) Result {
		rows, err := c.src.RawRecords(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		rows = stats.FirstRaw(rows, c.opts.RawLimit)
		return Result{Err: err, render: func(r Renderer) { r.RenderRawTable(rows) }}
	})
}

func (c *Controller) insightsTask(batch uuid.UUID) Task {
	return c.newTask(ViewInsights, model.AllCourses, batch, func(ctx context.Context) Result {
		drops, dropErr := c.src.DropOffs(ctx)
		top, topErr := c.src.TopPerforming(ctx)
		err := errors.Join(dropErr, topErr)
		if !usable(dropErr) || !usable(topErr) {
			return Result{Err: err}
		}
		in := model.Insights{DropOffs: drops, TopPerforming: top}
		return Result{Err: err, render: func(r Renderer) { r.RenderInsights(in) }}
	})
}

func (c *Controller) courseTrendTask(course model.CourseKey, batch uuid.UUID) Task {
	return c.newTask(ViewTrend, course, batch, func(ctx context.Context) Result {
		trends, err := c.src.MonthlyTrends(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		if series := trends.PerCourseTop5[course]; len(series) > 0 {
			return Result{Err: err, render: func(r Renderer) { r.RenderTrend(series) }}
		}
		rows, rawErr := c.src.RawRecords(ctx)
		err = errors.Join(err, rawErr)
		if !usable(rawErr) {
			return Result{Err: err}
		}
		c.metrics.recordFallback()
		series := stats.FallbackTrend(rows, course)
		return Result{Err: err, render: func(r Renderer) { r.RenderTrend(series) }}
	})
}

func (c *Controller) courseAverageTask(course model.CourseKey, batch uuid.UUID) Task {
	return c.newTask(ViewAverages, course, batch, func(ctx context.Context) Result {
		avgs, err := c.src.AverageTimes(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		minutes, _ := avgs.Lookup(course)
		single := model.CourseAverages{{Course: course, Minutes: minutes}}
		return Result{Err: err, render: func(r Renderer) { r.RenderAverages(single) }}
	})
}

func (c *Controller) courseCompletionTask(course model.CourseKey, batch uuid.UUID) Task {
	return c.newTask(ViewCompletionTable, course, batch, func(ctx context.Context) Result {
		table, err := c.src.CompletionPercentages(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		rows := model.CompletionTable{}
		if row, ok := table.Find(course); ok {
			rows = append(rows, row)
		}
		return Result{Err: err, render: func(r Renderer) { r.RenderCompletionTable(rows) }}
	})
}

func (c *Controller) courseRawTask(course model.CourseKey, batch uuid.UUID) Task {
	return c.newTask(ViewRawTable, course, batch, func(ctx context.Context) Result {
		rows, err := c.src.RawRecords(ctx)
		if !usable(err) {
			return Result{Err: err}
		}
		filtered := stats.FilterRaw(rows, course, c.opts.RawLimit)
		return Result{Err: err, render: func(r Renderer) { r.RenderRawTable(filtered) }}
	})
}
