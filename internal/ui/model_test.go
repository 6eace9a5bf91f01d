package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/lmsdash/internal/api"
	"github.com/verte-zerg/lmsdash/internal/dashboard"
	"github.com/verte-zerg/lmsdash/internal/model"
	"github.com/verte-zerg/lmsdash/internal/views"
)

func backendRoutes() map[string]string {
	return map[string]string{
		api.PathSummary: `{"total_users": 3, "most_popular_course": "Python", "avg_time_overall": 36.5,
			"completion_counts": {"completed": 2, "in_progress": 1}}`,
		api.PathMostLeast:  `{"most_time_course": "Python", "least_time_course": "Go"}`,
		api.PathAverages:   `{"Python": 42, "Go": 30}`,
		api.PathDevices:    `{"desktop": 2, "mobile": 1}`,
		api.PathTrends:     `{"overall": {"2024-01": 2, "2024-02": 1}, "per_course_top5": {}}`,
		api.PathCompletion: `{"Go": {"total": 2, "completed": 1, "completion_percent": 50}, "Python": {"total": 1, "completed": 1, "completion_percent": 100}}`,
		api.PathRaw: `[
			{"userid": 1, "techno": "Go", "accessdate": "2024-01-15", "completionstatus": "completed", "time_spent": 30},
			{"userid": 2, "techno": "Python", "accessdate": "2024-01-20", "completionstatus": "completed", "time_spent": 42},
			{"userid": 3, "techno": "Go", "accessdate": "2024-02-01", "completionstatus": "in_progress", "time_spent": 10}
		]`,
		api.PathDropOffs:      `{"drop_off_counts": {"Go": 1}}`,
		api.PathTopPerforming: `{"Go": 1, "Python": 1}`,
		api.PathRefresh:       `{"status": "ok", "rows": 3}`,
	}
}

func newTestModel(t *testing.T, routes map[string]string) (*Model, *dashboard.Controller, *views.Board) {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	board := views.NewBoard()
	ctrl := dashboard.New(api.New(srv.URL, 5*time.Second), board, zerolog.Nop(), nil, dashboard.DefaultOptions())
	m := NewModel(ctrl, board, 0)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if err := dashboard.Run(context.Background(), ctrl, ctrl.LoadAll()); err != nil {
		t.Fatalf("load: %v", err)
	}
	m.syncBoard()
	return m, ctrl, board
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestViewShowsOverview(t *testing.T) {
	m, _, _ := newTestModel(t, backendRoutes())
	out := m.View()
	for _, want := range []string{"Overview", "Total users", "Python", "Avg time (mins)", "Filter: All"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestInitStartsLoad(t *testing.T) {
	m, _, _ := newTestModel(t, backendRoutes())
	if m.Init() == nil {
		t.Fatalf("expected load command")
	}
}

func TestEnterOnBarSetsFilter(t *testing.T) {
	m, ctrl, board := newTestModel(t, backendRoutes())
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected filter tasks")
	}
	if ctrl.Current() != "Go" {
		t.Fatalf("expected Go, got %q", ctrl.Current())
	}
	if board.Selected() != "Go" {
		t.Fatalf("selector not updated: %q", board.Selected())
	}
}

func TestSelectorAppliesCourse(t *testing.T) {
	m, ctrl, _ := newTestModel(t, backendRoutes())
	m.Update(keyRune('f'))
	if !m.selecting {
		t.Fatalf("expected selector open")
	}
	if out := m.View(); !strings.Contains(out, "Course (enter to apply") {
		t.Fatalf("selector not rendered:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.selecting {
		t.Fatalf("expected selector closed")
	}
	if ctrl.Current() != "Python" {
		t.Fatalf("expected Python, got %q", ctrl.Current())
	}
}

func TestSelectorEscKeepsFilter(t *testing.T) {
	m, ctrl, _ := newTestModel(t, backendRoutes())
	m.Update(keyRune('f'))
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if ctrl.Current() != model.AllCourses {
		t.Fatalf("expected All, got %q", ctrl.Current())
	}
}

func TestResultsApplyThroughUpdate(t *testing.T) {
	m, ctrl, _ := newTestModel(t, backendRoutes())
	tasks := ctrl.SetFilter("Go")
	for _, task := range tasks {
		m.Update(resultMsg{result: task.Run(context.Background())})
	}
	m.moveTab(tabCompletion - tabOverview)
	out := m.View()
	if !strings.Contains(out, "50%") || strings.Contains(out, "100%") {
		t.Fatalf("completion table not filtered:\n%s", out)
	}
}

func TestClearAndReloadResetToAll(t *testing.T) {
	m, ctrl, _ := newTestModel(t, backendRoutes())
	ctrl.SetFilter("Go")
	m.Update(keyRune('c'))
	if ctrl.Current() != model.AllCourses {
		t.Fatalf("clear: expected All, got %q", ctrl.Current())
	}

	ctrl.SetFilter("Go")
	_, cmd := m.Update(reloadMsg{})
	if cmd == nil {
		t.Fatalf("expected reload tasks")
	}
	if ctrl.Current() != model.AllCourses {
		t.Fatalf("reload: expected All, got %q", ctrl.Current())
	}
}

func TestFooterShowsFailedViews(t *testing.T) {
	routes := backendRoutes()
	delete(routes, api.PathDevices)
	m, _, _ := newTestModel(t, routes)
	if out := m.renderFooter(); !strings.Contains(out, "1 view(s) failed to load") {
		t.Fatalf("footer missing failure count: %s", out)
	}
}

func TestTabsWrap(t *testing.T) {
	m, _, _ := newTestModel(t, backendRoutes())
	m.moveTab(-1)
	if m.activeTab != tabInsights {
		t.Fatalf("expected insights tab, got %d", m.activeTab)
	}
	if out := m.View(); !strings.Contains(out, "Drop-offs per course") {
		t.Fatalf("insights not rendered:\n%s", out)
	}
}
