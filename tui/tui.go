// Package tui provides the interactive issue tracker client using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ncobase/issues/structs"
	"github.com/ncobase/issues/tracker"
)

// Form fields in focus order; focusTable follows the last field.
const (
	fieldTitle = iota
	fieldOwner
	fieldStatus
	fieldEffort
	fieldDueDate
	fieldCount

	focusTable = fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title",
	"Owner",
	"Status",
	"Effort (days)",
	"Due Date (YYYY-MM-DD)",
}

// Table columns.
var columns = []struct {
	title string
	width int
}{
	{"Title", 24},
	{"Owner", 14},
	{"Status", 12},
	{"Created", 11},
	{"Effort", 7},
	{"Due Date", 10},
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	focusedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	statusColors = map[structs.Status]lipgloss.Color{
		structs.StatusNew:        lipgloss.Color("252"),
		structs.StatusAssigned:   lipgloss.Color("141"),
		structs.StatusInProgress: lipgloss.Color("214"),
		structs.StatusResolved:   lipgloss.Color("42"),
		structs.StatusClosed:     lipgloss.Color("245"),
	}

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	contentPadding = 2
)

// noticeBox collects tracker notifications raised inside commands.
type noticeBox struct {
	mu  sync.Mutex
	msg string
}

func (n *noticeBox) Notify(message string) {
	n.mu.Lock()
	n.msg = message
	n.mu.Unlock()
}

func (n *noticeBox) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msg := n.msg
	n.msg = ""
	return msg
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx     context.Context
	tracker *tracker.Tracker
	notices *noticeBox

	state     tracker.State
	form      [fieldCount]string
	focus     int
	cursor    int
	confirmID string
	pending   bool
	message   string

	width  int
	height int
}

// New creates a model driving a tracker over api.
func New(ctx context.Context, api tracker.API) Model {
	notices := &noticeBox{}
	t := tracker.New(api, notices)
	m := Model{
		ctx:     ctx,
		tracker: t,
		notices: notices,
		state:   t.State(),
	}
	m.state.Loading = true
	m.setForm(m.state.Draft)
	return m
}

// Messages
type loadedMsg struct {
	err error
}

type actionMsg struct {
	err error
}

func (m Model) load() tea.Cmd {
	t, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: t.Load(ctx)}
	}
}

func (m Model) submit() tea.Cmd {
	t, ctx := m.tracker, m.ctx
	t.SetDraft(m.draft())
	return func() tea.Msg {
		return actionMsg{err: t.Submit(ctx)}
	}
}

func (m Model) remove(id string) tea.Cmd {
	t, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		return actionMsg{err: t.Delete(ctx, id, func() bool { return true })}
	}
}

func (m Model) draft() tracker.Draft {
	return tracker.Draft{
		Title:   m.form[fieldTitle],
		Owner:   m.form[fieldOwner],
		Status:  m.form[fieldStatus],
		Effort:  m.form[fieldEffort],
		DueDate: m.form[fieldDueDate],
	}
}

func (m *Model) setForm(d tracker.Draft) {
	m.form = [fieldCount]string{d.Title, d.Owner, d.Status, d.Effort, d.DueDate}
}

// refresh pulls the tracker snapshot and any pending notice.
func (m *Model) refresh() {
	m.state = m.tracker.State()
	if msg := m.notices.take(); msg != "" {
		m.message = msg
	}
	if m.cursor >= len(m.state.Issues) {
		m.cursor = max(0, len(m.state.Issues)-1)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.refresh()
		return m, nil

	case actionMsg:
		m.pending = false
		m.refresh()
		m.setForm(m.state.Draft)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// A pending delete only accepts y; anything else cancels it.
	if m.confirmID != "" {
		id := m.confirmID
		m.confirmID = ""
		if (key == "y" || key == "Y") && !m.pending {
			m.message = ""
			m.pending = true
			return m, m.remove(id)
		}
		m.message = "Delete cancelled"
		return m, nil
	}

	switch key {
	case "tab":
		m.focus = (m.focus + 1) % (focusTable + 1)
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + focusTable) % (focusTable + 1)
		return m, nil
	case "enter":
		if m.pending {
			return m, nil
		}
		m.message = ""
		m.pending = true
		return m, m.submit()
	case "esc":
		if m.state.Editing() {
			m.tracker.CancelEdit()
			m.refresh()
			m.setForm(m.state.Draft)
		}
		return m, nil
	}

	switch m.focus {
	case focusTable:
		return m.handleTableKey(key)
	case fieldStatus:
		return m.handleStatusKey(key)
	default:
		return m.handleTextKey(msg)
	}
}

func (m Model) handleTableKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Issues)-1 {
			m.cursor++
		}
	case "e":
		if issue := m.selected(); issue != nil {
			if err := m.tracker.StartEdit(issue.ID); err == nil {
				m.refresh()
				m.setForm(m.state.Draft)
				m.focus = fieldTitle
			}
		}
	case "d":
		if m.pending {
			return m, nil
		}
		if issue := m.selected(); issue != nil {
			m.confirmID = issue.ID
			m.message = fmt.Sprintf("Delete %q? (y/n)", issue.Title)
		}
	}
	return m, nil
}

func (m Model) handleStatusKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "right", "l", " ":
		m.form[fieldStatus] = string(structs.Status(m.form[fieldStatus]).Next())
	case "left", "h":
		m.form[fieldStatus] = string(previousStatus(structs.Status(m.form[fieldStatus])))
	}
	return m, nil
}

func (m Model) handleTextKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	value := m.form[m.focus]
	switch msg.Type {
	case tea.KeyBackspace:
		if value != "" {
			_, size := utf8.DecodeLastRuneInString(value)
			m.form[m.focus] = value[:len(value)-size]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.form[m.focus] = value + string(msg.Runes)
	}
	return m, nil
}

func (m Model) selected() *structs.Issue {
	if m.cursor < 0 || m.cursor >= len(m.state.Issues) {
		return nil
	}
	return m.state.Issues[m.cursor]
}

func previousStatus(s structs.Status) structs.Status {
	for i, known := range structs.Statuses {
		if s == known {
			return structs.Statuses[(i+len(structs.Statuses)-1)%len(structs.Statuses)]
		}
	}
	return structs.StatusNew
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Issue Tracker"))
	b.WriteString("\n\n")
	b.WriteString(m.formView())
	b.WriteString("\n")
	b.WriteString(m.tableView())

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field  enter: save  esc: cancel edit  ↑/↓: select  e: edit  d: delete  q: quit"))

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

func (m Model) formView() string {
	var b strings.Builder

	heading, action := "Add New Issue", "Add Issue"
	if m.state.Editing() {
		heading, action = "Edit Issue", "Update Issue"
	}
	b.WriteString(sectionStyle.Render(heading))
	b.WriteString("\n")

	for i := 0; i < fieldCount; i++ {
		value := m.form[i]
		if i == fieldStatus {
			value = "< " + value + " >"
		} else if i == m.focus {
			value += "█"
		}
		line := fmt.Sprintf("%-22s %s", fieldLabels[i]+":", value)
		if i == m.focus {
			line = focusedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	hint := "[enter] " + action
	if m.state.Editing() {
		hint += "  [esc] Cancel"
	}
	if m.pending {
		hint += "  saving..."
	}
	b.WriteString(helpStyle.Render(hint))
	b.WriteString("\n")
	return b.String()
}

func (m Model) tableView() string {
	var b strings.Builder

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(col.title, col.width)
	}
	b.WriteString(headerStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	switch {
	case m.state.Loading:
		b.WriteString("Loading issues...\n")
		return b.String()
	case len(m.state.Issues) == 0:
		b.WriteString("No issues found.\n")
		return b.String()
	}

	for i, issue := range m.state.Issues {
		cells := rowCells(issue)
		for j, col := range columns {
			cells[j] = pad(cells[j], col.width)
		}
		if c, ok := statusColors[issue.Status]; ok && !(m.focus == focusTable && i == m.cursor) {
			cells[2] = lipgloss.NewStyle().Foreground(c).Render(cells[2])
		}
		line := strings.Join(cells, " ")
		if m.focus == focusTable && i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// rowCells formats an issue for the table.
func rowCells(issue *structs.Issue) []string {
	created := ""
	if !issue.CreatedAt.IsZero() {
		created = issue.CreatedAt.Local().Format(structs.DateLayout)
	}
	due := ""
	if issue.DueDate != nil {
		due = issue.DueDate.String()
	}
	return []string{
		issue.Title,
		issue.Owner,
		string(issue.Status),
		created,
		strconv.FormatFloat(issue.Effort, 'f', -1, 64),
		due,
	}
}

// pad truncates or right-pads s to width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}

// Run starts the TUI against api.
func Run(ctx context.Context, api tracker.API) error {
	m := New(ctx, api)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
