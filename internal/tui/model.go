package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"metricls/internal/app"
)

const autoRefreshEvery = 2 * time.Second

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Status() (app.DaemonStatus, error)
	Browse(context.Context, app.BrowseParams) ([]app.SetView, error)
}

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller
	params     app.BrowseParams

	list list.Model
	sets []app.SetView

	daemonStatus app.DaemonStatus
	statusMsg    string

	err     error
	loading bool
	auto    bool

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller, params app.BrowseParams) *Model {
	delegate := list.NewDefaultDelegate()
	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Metric sets"
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(false)
	lst.DisableQuitKeybindings()

	return &Model{
		controller: ctrl,
		params:     params,
		list:       lst,
		statusMsg:  "Checking local daemon…",
		loading:    true,
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller, params app.BrowseParams) error {
	m := New(ctrl, params)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(checkDaemonStatusCmd(m.controller), loadSetsCmd(m.controller, m.params))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 4 {
			m.list.SetSize(msg.Width/2, msg.Height-4)
		}

	case daemonStatusMsg:
		m.daemonStatus = msg.status
		switch {
		case msg.status.Running && msg.status.PID > 0:
			m.statusMsg = fmt.Sprintf("Local daemon running on port %d (pid %d).", msg.status.Port, msg.status.PID)
		case msg.status.Running:
			m.statusMsg = fmt.Sprintf("Local daemon running on port %d.", msg.status.Port)
		default:
			m.statusMsg = fmt.Sprintf("No local daemon on port %d.", msg.status.Port)
		}

	case setsLoadedMsg:
		m.loading = false
		m.err = nil
		m.sets = msg.sets
		items := make([]list.Item, 0, len(msg.sets))
		for _, s := range msg.sets {
			items = append(items, setItem{SetView: s})
		}
		m.list.SetItems(items)
		m.lastUpdated = time.Now()

	case errMsg:
		m.loading = false
		m.err = msg.err

	case tickMsg:
		if !m.auto {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(loadSetsCmd(m.controller, m.params), tickCmd())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, loadSetsCmd(m.controller, m.params)
		case "a":
			m.auto = !m.auto
			if m.auto {
				return m, tickCmd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true)
	if !m.daemonStatus.Running {
		statusStyle = statusStyle.Foreground(lipgloss.Color("244"))
	} else {
		statusStyle = statusStyle.Foreground(lipgloss.Color("42"))
	}
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteByte('\n')

	if m.loading {
		b.WriteString("Loading metric sets…\n")
	} else if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}

	left := m.list.View()
	if len(m.list.Items()) == 0 && !m.loading && m.err == nil {
		left = "No metric sets published.\n"
	}
	if current := m.currentSet(); current != nil {
		detailStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, detailStyle.Render(renderSet(*current))))
	} else {
		b.WriteString(left)
	}
	b.WriteByte('\n')

	help := "Commands: q quit • r refresh • a auto-refresh"
	if m.auto {
		help += " (on)"
	}
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func renderSet(s app.SetView) string {
	if s.Err != nil {
		return fmt.Sprintf("%s\nerror: %v", s.Name, s.Err)
	}
	var b strings.Builder
	d := s.Detail
	fmt.Fprintf(&b, "%s\n", s.Name)
	fmt.Fprintf(&b, "meta  size=%d inuse=%d gn=%d metrics=%d\n", d.Meta.Size, d.Meta.Inuse, d.Meta.GN, d.MetricCount)
	fmt.Fprintf(&b, "data  size=%d inuse=%d gn=%d\n\n", d.Data.Size, d.Data.Inuse, d.Data.GN)
	for _, mv := range s.Metrics {
		fmt.Fprintf(&b, "%4s %16s  %s\n", mv.Type, mv.Value, mv.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// setItem adapts app.SetView to the bubbles list item interface.
type setItem struct {
	app.SetView
}

func (s setItem) Title() string {
	return s.Name
}

func (s setItem) Description() string {
	if s.Err != nil {
		return fmt.Sprintf("error: %v", s.Err)
	}
	return fmt.Sprintf("%d metrics | data gn %d", len(s.Metrics), s.Detail.Data.GN)
}

func (s setItem) FilterValue() string {
	return s.Name
}

func (m *Model) currentSet() *app.SetView {
	if len(m.sets) == 0 {
		return nil
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.sets) {
		return nil
	}
	return &m.sets[idx]
}

type daemonStatusMsg struct {
	status app.DaemonStatus
}

type setsLoadedMsg struct {
	sets []app.SetView
}

type tickMsg time.Time

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func checkDaemonStatusCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		status, err := ctrl.Status()
		if err != nil {
			return errMsg{err}
		}
		return daemonStatusMsg{status: status}
	}
}

func loadSetsCmd(ctrl Controller, params app.BrowseParams) tea.Cmd {
	return func() tea.Msg {
		sets, err := ctrl.Browse(context.Background(), params)
		if err != nil {
			return errMsg{err}
		}
		return setsLoadedMsg{sets: sets}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(autoRefreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}
