package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kmaclean/osprey/internal/burrow"
	"github.com/kmaclean/osprey/internal/engine"
	"github.com/kmaclean/osprey/internal/prefs"
)

const uiTickInterval = time.Second

// tickMsg drives the periodic re-read of engine views.
type tickMsg time.Time

// opResultMsg reports the outcome of a user-triggered engine operation.
type opResultMsg struct {
	op  string
	err error
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx       context.Context
	eng       *engine.Engine
	theme     Theme
	userPrefs prefs.Prefs
	prefsPath string

	width  int
	height int

	taskTable    table.Model
	tasksVersion uint64
	notice       string
	noticeUntil  time.Time
}

// NewModel builds the dashboard model around a started engine.
func NewModel(ctx context.Context, eng *engine.Engine, userPrefs prefs.Prefs, prefsPath string) Model {
	theme := GetTheme(userPrefs.Theme)

	t := table.New(
		table.WithColumns(taskColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles(theme))

	return Model{
		ctx:       ctx,
		eng:       eng,
		theme:     theme,
		userPrefs: userPrefs,
		prefsPath: prefsPath,
		taskTable: t,
	}
}

func taskColumns(width int) []table.Column {
	// The label column absorbs whatever is left after the fixed columns.
	label := width - 12 - 10 - 10 - 6 - 8
	if label < 20 {
		label = 20
	}
	return []table.Column{
		{Title: "ID", Width: 12},
		{Title: "KIND", Width: 10},
		{Title: "TASK", Width: label},
		{Title: "STATUS", Width: 10},
		{Title: "PROG", Width: 6},
		{Title: "STARTED", Width: 8},
	}
}

func tableStyles(theme Theme) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Foreground(lipgloss.Color(theme.Muted)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(theme.Border)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(theme.SelectionText)).
		Background(lipgloss.Color(theme.SelectionBg)).
		Bold(false)
	return s
}

func tick() tea.Cmd {
	return tea.Tick(uiTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.taskTable.SetColumns(taskColumns(msg.Width - 2))
		h := msg.Height - 8
		if h < 3 {
			h = 3
		}
		m.taskTable.SetHeight(h)
		return m, nil

	case tickMsg:
		m.syncTasks()
		if !m.noticeUntil.IsZero() && time.Now().After(m.noticeUntil) {
			m.notice = ""
			m.noticeUntil = time.Time{}
		}
		return m, tick()

	case opResultMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("%s failed: %v", msg.op, msg.err))
		} else {
			m.setNotice(msg.op + " done")
		}
		m.syncTasks()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		case "p":
			return m, m.togglePush()
		case "c":
			return m, m.cancelSelected()
		case "T":
			m.cycleTheme()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.taskTable, cmd = m.taskTable.Update(msg)
	return m, cmd
}

// syncTasks rebuilds the table rows when the tasks view has moved.
func (m *Model) syncTasks() {
	view := m.eng.Tasks()
	if view.Version == m.tasksVersion {
		return
	}
	m.tasksVersion = view.Version

	rows := make([]table.Row, 0, len(view.Value))
	for _, task := range view.Value {
		rows = append(rows, table.Row{
			shortID(task.ID),
			task.Kind,
			task.Label(),
			task.Status,
			formatProgress(task),
			formatStarted(task),
		})
	}
	m.taskTable.SetRows(rows)
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeUntil = time.Now().Add(5 * time.Second)
}

func (m Model) refreshCmd() tea.Cmd {
	ctx := m.ctx
	eng := m.eng
	return func() tea.Msg {
		eng.RefreshAll(ctx)
		return opResultMsg{op: "refresh"}
	}
}

func (m *Model) togglePush() tea.Cmd {
	next := !m.eng.UsePush()
	m.eng.SetUsePush(next)
	m.userPrefs.UsePush = next
	if err := prefs.Save(m.prefsPath, m.userPrefs); err != nil {
		m.setNotice(fmt.Sprintf("save prefs: %v", err))
		return nil
	}
	if next {
		m.setNotice("push enabled")
	} else {
		m.setNotice("push disabled")
	}
	return nil
}

func (m Model) cancelSelected() tea.Cmd {
	row := m.taskTable.SelectedRow()
	if row == nil {
		return nil
	}
	// The table shows a shortened ID; resolve it against the full view.
	var target burrow.Task
	for _, task := range m.eng.Tasks().Value {
		if shortID(task.ID) == row[0] {
			target = task
			break
		}
	}
	if target.ID == "" || burrow.IsTerminalStatus(target.Status) {
		return nil
	}
	ctx := m.ctx
	eng := m.eng
	return func() tea.Msg {
		return opResultMsg{op: "cancel " + shortID(target.ID), err: eng.CancelTask(ctx, target.ID)}
	}
}

func (m *Model) cycleTheme() {
	m.userPrefs.Theme = NextTheme(m.theme.Name)
	m.theme = GetTheme(m.userPrefs.Theme)
	m.taskTable.SetStyles(tableStyles(m.theme))
	if err := prefs.Save(m.prefsPath, m.userPrefs); err != nil {
		m.setNotice(fmt.Sprintf("save prefs: %v", err))
		return
	}
	m.setNotice("theme: " + m.theme.Name)
}

// View implements tea.Model.
func (m Model) View() string {
	return m.renderHeader() + "\n" +
		m.taskTable.View() + "\n" +
		m.renderCommandBar()
}
