package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/course-viewer/internal/models"
)

// Store is the course store the screen reads and mutates.
type Store interface {
	Mutator
	Select(id string)
	DeleteCourse(id string)
	Snapshot() models.CourseSnapshot
	Subscribe(ctx context.Context) <-chan models.CourseSnapshot
}

// SnapshotMsg carries a store snapshot into the event loop.
type SnapshotMsg struct {
	Snapshot models.CourseSnapshot
}

// streamClosedMsg signals the subscription ended.
type streamClosedMsg struct{}

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Delete   key.Binding
	Clear    key.Binding
	Quit     key.Binding
	QuitList key.Binding
}

var keys = keyMap{
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
	Submit:   key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "save")),
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c")),
	QuitList: key.NewBinding(key.WithKeys("q")),
}

var (
	headingStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedStyle  = paneStyle.BorderForeground(lipgloss.Color("62"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// listFocus is the focus index of the course list; lower indices are form inputs.
const listFocus = 3

// Model is the bubbletea model of the course screen.
type Model struct {
	store     Store
	snapshots <-chan models.CourseSnapshot

	snapshot models.CourseSnapshot
	form     CourseForm
	inputs   []textinput.Model
	focus    int
	cursor   int
	width    int
	quitting bool
}

// NewModel subscribes to the store for the lifetime of ctx.
func NewModel(ctx context.Context, store Store) Model {
	inputs := make([]textinput.Model, len(Fields))
	for i, field := range Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = field.Label()
		ti.CharLimit = 64
		ti.Width = 32
		inputs[i] = ti
	}
	inputs[0].Focus()

	m := Model{
		store:     store,
		snapshots: store.Subscribe(ctx),
		inputs:    inputs,
	}
	m.apply(store.Snapshot())
	return m
}

// Form exposes the form state.
func (m Model) Form() CourseForm {
	return m.form
}

// Cursor returns the highlighted list row.
func (m Model) Cursor() int {
	return m.cursor
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForSnapshot(m.snapshots))
}

func waitForSnapshot(ch <-chan models.CourseSnapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case SnapshotMsg:
		m.apply(msg.Snapshot)
		return m, waitForSnapshot(m.snapshots)

	case streamClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch {
		case key.Matches(msg, keys.Next):
			cmd := m.setFocus((m.focus + 1) % (listFocus + 1))
			return m, cmd
		case key.Matches(msg, keys.Prev):
			cmd := m.setFocus((m.focus + listFocus) % (listFocus + 1))
			return m, cmd
		case key.Matches(msg, keys.Clear):
			m.form.Clear(m.store)
			m.refresh()
			return m, nil
		}
		if m.focus == listFocus {
			return m.updateList(msg)
		}
		if key.Matches(msg, keys.Submit) {
			m.form.Submit(m.store)
			m.refresh()
			cmd := m.setFocus(0)
			return m, cmd
		}
	}

	if m.focus == listFocus {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.form.SetValue(Fields[m.focus], m.inputs[m.focus].Value())
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	courses := m.snapshot.Courses
	switch {
	case key.Matches(msg, keys.QuitList):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(courses)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Select):
		if m.cursor < len(courses) {
			m.store.Select(courses[m.cursor].ID)
			m.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if m.cursor < len(courses) {
			m.store.DeleteCourse(courses[m.cursor].ID)
			m.refresh()
		}
	}
	return m, nil
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

// refresh reads the store after a local mutation so the screen does not wait
// for the subscription to catch up.
func (m *Model) refresh() {
	m.apply(m.store.Snapshot())
}

func (m *Model) apply(snap models.CourseSnapshot) {
	if snap.Version < m.snapshot.Version {
		return
	}
	m.snapshot = snap
	m.form.Sync(snap.Selected)
	if m.cursor >= len(snap.Courses) {
		m.cursor = len(snap.Courses) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	for i, field := range Fields {
		if v := m.form.Value(field); m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Course Viewer & Editor"))
	b.WriteString("\n")
	b.WriteString(m.pane(m.focus < listFocus).Render(m.formView()))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.pane(m.focus == listFocus).Render(m.listView()),
		paneStyle.Render(m.detailsView()),
	))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: switch focus • enter: save/select • d: delete • esc: clear • ctrl+c: quit"))
	return b.String()
}

func (m Model) pane(focused bool) lipgloss.Style {
	if focused {
		return focusedStyle
	}
	return paneStyle
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.form.Title()))
	b.WriteString("\n")
	for i, field := range Fields {
		b.WriteString(labelStyle.Render(field.Label()))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString(buttonStyle.Render(m.form.SubmitLabel()))
	return b.String()
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Courses"))
	selectedID := m.snapshot.SelectedID()
	for i, course := range m.snapshot.Courses {
		b.WriteString("\n")
		line := course.Name()
		switch {
		case i == m.cursor && m.focus == listFocus:
			line = cursorStyle.Render("> " + line)
		case course.ID == selectedID:
			line = selectedStyle.Render("* " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
	}
	if len(m.snapshot.Courses) == 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("No courses"))
	}
	return b.String()
}

func (m Model) detailsView() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Details"))
	b.WriteString("\n")
	sel := m.snapshot.Selected
	if sel == nil {
		b.WriteString(DetailsHint)
		return b.String()
	}
	fmt.Fprintf(&b, "Department: %s\nNumber: %s\nLocation: %s\n", sel.Department, sel.Number, sel.Location)
	b.WriteString(helpStyle.Render("esc: Clear"))
	return b.String()
}
