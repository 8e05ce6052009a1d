// Package tui renders dashboard widgets in the terminal.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"edu-dashboard-api/internal/dashboard"
	"edu-dashboard-api/internal/focus"
)

// ViewsMsg carries widget state changes into the program.
type ViewsMsg []dashboard.View

// Updates hands board changes to the program. It keeps only the latest
// view per widget, so a program slower than the board skips intermediate
// states but never a widget's last one.
type Updates struct {
	mu      sync.Mutex
	order   []string
	pending map[string]dashboard.View
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewUpdates() *Updates {
	return &Updates{
		pending: make(map[string]dashboard.View),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Push is the Board onChange callback. It never blocks.
func (u *Updates) Push(v dashboard.View) {
	u.mu.Lock()
	if _, queued := u.pending[v.Widget]; !queued {
		u.order = append(u.order, v.Widget)
	}
	u.pending[v.Widget] = v
	u.mu.Unlock()

	select {
	case u.wake <- struct{}{}:
	default:
	}
}

// Close stops the program's wait for updates.
func (u *Updates) Close() {
	u.once.Do(func() { close(u.done) })
}

func (u *Updates) drain() []dashboard.View {
	u.mu.Lock()
	defer u.mu.Unlock()
	views := make([]dashboard.View, 0, len(u.order))
	for _, name := range u.order {
		views = append(views, u.pending[name])
	}
	u.order = nil
	clear(u.pending)
	return views
}

func waitForViews(u *Updates) tea.Cmd {
	if u == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case <-u.done:
				return nil
			case <-u.wake:
				if views := u.drain(); len(views) > 0 {
					return ViewsMsg(views)
				}
			}
		}
	}
}

// Board is the part of dashboard.Board the model drives.
type Board interface {
	Views() []dashboard.View
	Refetch(name string) error
	SetEnabled(name string, enabled bool) error
}

// Model is the Bubble Tea model of the terminal dashboard.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type Model struct {
	board    Board
	focus    *focus.Emitter
	updates  *Updates
	spinner  spinner.Model
	order    []string
	views    map[string]dashboard.View
	disabled map[string]bool
	selected int
	width    int
	lastErr  error
	quitting bool
}

// New builds the model from the board's current views.
func New(board Board, emitter *focus.Emitter, updates *Updates) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	m := Model{
		board:    board,
		focus:    emitter,
		updates:  updates,
		spinner:  s,
		views:    make(map[string]dashboard.View),
		disabled: make(map[string]bool),
	}
	for _, v := range board.Views() {
		m.order = append(m.order, v.Widget)
		m.views[v.Widget] = v
	}
	return m
}

// Init initializes the model (Bubble Tea interface).
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForViews(m.updates))
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewsMsg:
		for _, v := range msg {
			m.views[v.Widget] = v
		}
		return m, waitForViews(m.updates)
	case tea.FocusMsg:
		if m.focus != nil {
			m.focus.Focus()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.order)-1 {
			m.selected++
		}
	case "r":
		if name, ok := m.current(); ok {
			m.lastErr = m.board.Refetch(name)
		}
	case "R":
		m.lastErr = m.board.Refetch("")
	case "e":
		if name, ok := m.current(); ok {
			m.disabled[name] = !m.disabled[name]
			m.lastErr = m.board.SetEnabled(name, !m.disabled[name])
		}
	}
	return m, nil
}

func (m Model) current() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.order) {
		return "", false
	}
	return m.order[m.selected], true
}

// View renders the model (Bubble Tea interface).
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Education dashboard"))
	b.WriteString("\n")

	for i, name := range m.order {
		v := m.views[name]
		cursor := "  "
		label := nameStyle.Render(name)
		if i == m.selected {
			cursor = selectedStyle.Render("> ")
			label = selectedStyle.Inherit(nameStyle).Render(name)
		}

		indicator := " "
		if v.Fetching {
			indicator = m.spinner.View()
		}
		status := v.Status
		if m.disabled[name] {
			status = "paused"
		}

		line := fmt.Sprintf("%s%s %s %s %s", cursor, label, statusStyle(status).Render(status), indicator, describe(v.Data))
		if v.Error != "" {
			line += " " + errorStyle.Render(v.Error)
		}
		b.WriteString(line + "\n")
	}

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render("r refetch  R refetch all  e pause/resume  j/k move  q quit"))
	if len(m.order) == 0 {
		b.WriteString("\n" + mutedStyle.Render("no widgets"))
	}
	return b.String()
}
