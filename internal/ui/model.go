// Package ui provides the Bubble Tea dashboard interface.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lmsdash/internal/dashboard"
	"github.com/verte-zerg/lmsdash/internal/model"
	"github.com/verte-zerg/lmsdash/internal/stats"
	"github.com/verte-zerg/lmsdash/internal/views"
)

const (
	tabOverview = iota
	tabTrend
	tabCompletion
	tabRaw
	tabInsights
)

const (
	plotHeight  = 10
	shareHeight = 6
	wideLayout  = 100
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	optionStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	activeOptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

type resultMsg struct {
	result dashboard.Result
}

type reloadMsg struct{}

// Model implements the Bubble Tea dashboard UI. Update is the only place
// task results are applied.
type Model struct {
	ctrl     *dashboard.Controller
	board    *views.Board
	interval time.Duration

	tabs            []string
	activeTab       int
	viewports       []viewport.Model
	completionTable table.Model
	rawTable        table.Model

	width  int
	height int

	barCursor int
	rendered  uint64

	selecting   bool
	selectIndex int

	keys keyMap
	help help.Model
}

// NewModel constructs the dashboard UI. A non-positive interval disables
// the auto-reload timer.
func NewModel(ctrl *dashboard.Controller, board *views.Board, interval time.Duration) *Model {
	m := &Model{
		ctrl:            ctrl,
		board:           board,
		interval:        interval,
		tabs:            []string{"Overview", "Trend", "Completion", "Raw", "Insights"},
		completionTable: newTable(),
		rawTable:        newTable(),
		keys:            defaultKeyMap(),
		help:            help.New(),
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.dispatch(m.ctrl.LoadAll()), m.scheduleReload())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case resultMsg:
		next := m.ctrl.Apply(msg.result)
		m.syncBoard()
		return m, m.dispatch(next)
	case reloadMsg:
		tasks := m.ctrl.Reload()
		m.syncBoard()
		return m, tea.Batch(m.dispatch(tasks), m.scheduleReload())
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.selecting {
			return m.updateSelector(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.moveTab(-1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Right):
		m.moveTab(1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Filter):
		m.selecting = true
		m.selectIndex = indexOf(m.board.CourseOptions(), m.ctrl.Current())
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		return m, m.apply(m.ctrl.Clear())
	case key.Matches(msg, m.keys.Refresh):
		return m, m.apply(m.ctrl.Refresh())
	}

	switch m.activeTab {
	case tabOverview:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.moveBar(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.moveBar(1)
			return m, nil
		case key.Matches(msg, m.keys.Select):
			course, ok := m.board.AverageLabelAt(m.barCursor)
			if !ok {
				return m, nil
			}
			return m, m.apply(m.ctrl.SetFilter(course))
		}
	case tabCompletion:
		var cmd tea.Cmd
		m.completionTable, cmd = m.completionTable.Update(msg)
		return m, cmd
	case tabRaw:
		var cmd tea.Cmd
		m.rawTable, cmd = m.rawTable.Update(msg)
		return m, cmd
	}
	vp := m.viewports[m.activeTab]
	var cmd tea.Cmd
	vp, cmd = vp.Update(msg)
	m.viewports[m.activeTab] = vp
	return m, cmd
}

func (m *Model) updateSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.board.CourseOptions()
	switch msg.Type {
	case tea.KeyEsc:
		m.selecting = false
		return m, nil
	case tea.KeyEnter:
		m.selecting = false
		if m.selectIndex < 0 || m.selectIndex >= len(options) {
			return m, nil
		}
		return m, m.apply(m.ctrl.SetFilter(options[m.selectIndex]))
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selectIndex = maxInt(0, m.selectIndex-1)
	case key.Matches(msg, m.keys.Down):
		m.selectIndex = minInt(len(options)-1, m.selectIndex+1)
	}
	return m, nil
}

// apply syncs the selector change made by the controller and starts tasks.
func (m *Model) apply(tasks []dashboard.Task) tea.Cmd {
	m.syncBoard()
	return m.dispatch(tasks)
}

func (m *Model) dispatch(tasks []dashboard.Task) tea.Cmd {
	if len(tasks) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, task := range tasks {
		task := task
		cmds = append(cmds, func() tea.Msg {
			return resultMsg{result: task.Run(context.Background())}
		})
	}
	return tea.Batch(cmds...)
}

func (m *Model) scheduleReload() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return reloadMsg{}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.selecting {
		return fitLines(m.renderSelector(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 2
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.help.Width = m.width
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	m.completionTable.Blur()
	m.rawTable.Blur()
	switch m.activeTab {
	case tabCompletion:
		m.completionTable.Focus()
	case tabRaw:
		m.rawTable.Focus()
	}
}

func (m *Model) moveBar(delta int) {
	count := m.board.AverageCount()
	if count == 0 {
		m.barCursor = 0
		return
	}
	m.barCursor = minInt(count-1, maxInt(0, m.barCursor+delta))
	m.renderTabContents()
}

// syncBoard re-renders tab contents when the board changed.
func (m *Model) syncBoard() {
	if m.board.Version() == m.rendered {
		return
	}
	m.rendered = m.board.Version()
	m.barCursor = minInt(m.barCursor, maxInt(0, m.board.AverageCount()-1))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabTrend].SetContent(renderChart(m.board.Slot(views.MountTrend), width, plotHeight, -1))
	m.viewports[tabInsights].SetContent(renderInsights(m.board.Insights()))
	fillTable(&m.completionTable, views.CompletionHeaders, m.board.CompletionRows(), width, bodyHeight)
	fillTable(&m.rawTable, views.RawHeaders, m.board.RawRows(), width, bodyHeight)
}

func (m *Model) renderOverview(width int) string {
	cards := renderKPICards(m.board.KPIs(), width)
	bars := renderChart(m.board.Slot(views.MountAverages), width, 0, m.barCursor)
	shareWidth := width
	if width >= wideLayout {
		shareWidth = width/2 - 2
	}
	pie := renderChart(m.board.Slot(views.MountCompletion), shareWidth, shareHeight, -1)
	doughnut := renderChart(m.board.Slot(views.MountDevices), shareWidth, shareHeight, -1)
	var shares string
	if width >= wideLayout {
		shares = lipgloss.JoinHorizontal(lipgloss.Top, padLines(pie, shareWidth+2), doughnut)
	} else {
		shares = pie + "\n\n" + doughnut
	}
	return strings.TrimRight(cards+"\n\n"+bars+"\n\n"+shares, "\n")
}

func renderKPICards(kpis []views.KPI, width int) string {
	cards := make([]string, len(kpis))
	for i, k := range kpis {
		cards[i] = metricCard(k.Title, k.Value)
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderChart(slot *views.Slot, width, height, selected int) string {
	chart := slot.Chart()
	if chart == nil {
		return "Loading..."
	}
	lines := chart.Lines(width, height, selected, true)
	return headerStyle.Render(chart.Title()) + "\n" + strings.Join(lines, "\n")
}

func renderInsights(in model.Insights) string {
	return strings.Join([]string{
		headerStyle.Render("Drop-offs per course"),
		countLines(in.DropOffs),
		"",
		headerStyle.Render("Top performing courses"),
		countLines(in.TopPerforming),
	}, "\n")
}

func countLines(counts model.Counts) string {
	if len(counts) == 0 {
		return "No data."
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Label, fmt.Sprintf("%g", c.Value)}
	}
	return strings.Join(stats.FormatTable(nil, rows, map[int]bool{1: true}, maxColumnWidth), "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Course: %s", m.board.Selected().Label())
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderStatus() string {
	parts := []string{"Filter: " + m.ctrl.Current().Label()}
	if status := m.board.Status(); status != "" {
		parts = append(parts, status)
	}
	line := truncateLine(strings.Join(parts, "  "), m.width)
	if failed := m.ctrl.Failures(); failed > 0 {
		return headerStyle.Render(line) + "  " + errorStyle.Render(fmt.Sprintf("%d view(s) failed to load", failed))
	}
	return headerStyle.Render(line)
}

func (m *Model) renderFooter() string {
	return m.renderStatus() + "\n" + m.help.View(m.keys)
}

func (m *Model) renderBody(height int) string {
	switch m.activeTab {
	case tabCompletion:
		if len(m.board.CompletionRows()) == 0 {
			return fitLines("No completion data.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.completionTable.View()), m.width, height)
	case tabRaw:
		if len(m.board.RawRows()) == 0 {
			return fitLines("No raw records.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.rawTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderSelector() string {
	lines := []string{"Course (enter to apply, esc to cancel)", ""}
	for i, course := range m.board.CourseOptions() {
		if i == m.selectIndex {
			lines = append(lines, activeOptionStyle.Render("› "+course.Label()))
		} else {
			lines = append(lines, optionStyle.Render("  "+course.Label()))
		}
	}
	modal := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func indexOf(options []model.CourseKey, course model.CourseKey) int {
	for i, opt := range options {
		if opt == course {
			return i
		}
	}
	return 0
}
