package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/itask/internal/app"
	"github.com/idilsaglam/itask/internal/model"
)

// listItem adapts a Task to bubbles/list.Item
type listItem struct {
	task model.Task
}

func (i listItem) Title() string       { return i.task.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.task.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct {
	editingID string
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	box := mutedStyle.Render(Current().BoxUnchecked)
	text := it.task.Text
	if it.task.Completed {
		box = successStyle.Render(Current().BoxChecked)
		text = doneStyle.Render(text)
	}
	if it.task.ID == d.editingID {
		text = editingStyle.Render(text) + mutedStyle.Render("  (editing)")
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

// Dialog is the confirmation capability used while the TUI runs. A prompt
// is first declined and recorded; once the user approves it the action is
// run again and the same prompt is accepted exactly once.
type Dialog struct {
	prompt   string
	approved string
}

// Confirm implements app.Confirmer.
func (d *Dialog) Confirm(prompt string) bool {
	if d.approved != "" && d.approved == prompt {
		d.approved = ""
		return true
	}
	d.prompt = prompt
	return false
}

// Pending returns the prompt waiting for an answer.
func (d *Dialog) Pending() string { return d.prompt }

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConfirm
)

// stateMsg carries a snapshot published by app.App.
type stateMsg app.State

var keys = struct {
	toggle, add, edit, del, clear, sort, finished, yank key.Binding
}{
	toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
	add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	del:      key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
	clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear finished")),
	sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	finished: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "show finished")),
	yank:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
}

// Model is the Bubble Tea model of the interactive list.
type Model struct {
	app    *app.App
	dialog *Dialog
	state  app.State

	list  list.Model
	ti    textinput.Model
	mode  mode
	retry func() string

	status string
	err    string

	width, height int

	// Copy writes text to the clipboard.
	Copy func(string) error
}

// NewModel builds the TUI model. The app's confirmer should be d.Confirm.
func NewModel(a *app.App, d *Dialog) Model {
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	extra := func() []key.Binding {
		return []key.Binding{keys.toggle, keys.add, keys.edit, keys.del, keys.clear, keys.sort, keys.finished, keys.yank}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Write a new todo (enter to save)"
	ti.CharLimit = 200

	m := Model{
		app:    a,
		dialog: d,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,
		Copy:   clipboard.WriteAll,
	}
	m.sync(a.State())
	return m
}

// RunTUI runs the interactive list until the user quits. Every change is
// persisted as it happens; nothing is written on exit.
func RunTUI(a *app.App) error {
	d := &Dialog{}
	prev := a.SetConfirmer(d.Confirm)
	defer a.SetConfirmer(prev)

	p := tea.NewProgram(NewModel(a, d), tea.WithAltScreen())
	// Send blocks until Update drains it, and the app publishes from inside Update.
	cancel := a.Subscribe(func(s app.State) { go p.Send(stateMsg(s)) })
	defer cancel()

	_, err := p.Run()
	return err
}

// State returns the snapshot the model last rendered.
func (m Model) State() app.State { return m.state }

func (m *Model) sync(s app.State) tea.Cmd {
	m.state = s
	items := make([]list.Item, 0, len(s.Visible))
	for _, t := range s.Visible {
		items = append(items, listItem{task: t})
	}
	m.list.SetDelegate(itemDelegate{editingID: s.EditingID})
	m.list.Title = header(s)
	return m.list.SetItems(items)
}

func header(s app.State) string {
	shown := "hiding finished"
	if s.ShowFinished {
		shown = "showing finished"
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d  %s",
		titleStyle.Render("iTask"),
		successStyle.Render("✔"), s.Finished,
		pendingStyle.Render("•"), s.Remaining,
		accentStyle.Render("Total"), len(s.Tasks),
		mutedStyle.Render(shown),
	)
}

func (m Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.task, ok
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if msg.Rev > m.state.Rev {
			return m, m.sync(app.State(msg))
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.mode == modeAdd || m.mode == modeEdit {
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	h := m.height - 4
	if m.mode != modeBrowse {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	m.status, m.err = "", ""

	switch {
	case msg.String() == "q" || msg.String() == "ctrl+c":
		return m, tea.Quit
	case msg.String() == "esc" && m.list.FilterState() == list.Unfiltered:
		return m, tea.Quit

	case key.Matches(msg, keys.toggle):
		if t, ok := m.selected(); ok {
			m.app.Toggle(t.ID)
		}
	case key.Matches(msg, keys.add):
		m.mode = modeAdd
		m.ti.SetValue("")
		m.ti.Placeholder = "Write a new todo (enter to save)"
		m.resize()
		return m, m.ti.Focus()
	case key.Matches(msg, keys.edit):
		t, ok := m.selected()
		if !ok || !m.app.BeginEdit(t.ID) {
			return m, nil
		}
		m.mode = modeEdit
		m.ti.SetValue(m.app.State().Pending)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit todo (enter to update, esc to cancel)"
		m.resize()
		cmd := m.sync(m.app.State())
		return m, tea.Batch(cmd, m.ti.Focus())
	case key.Matches(msg, keys.del):
		if t, ok := m.selected(); ok {
			a, id := m.app, t.ID
			m.withConfirm(func() string {
				if a.Delete(id) {
					return "deleted"
				}
				return ""
			})
		}
	case key.Matches(msg, keys.clear):
		a := m.app
		m.withConfirm(func() string {
			if n := a.ClearFinished(); n > 0 {
				return fmt.Sprintf("removed %d finished", n)
			}
			return ""
		})
	case key.Matches(msg, keys.sort):
		m.app.Sort()
		m.status = "sorted: unfinished first, newest first"
	case key.Matches(msg, keys.finished):
		m.app.ToggleShowFinished()
	case key.Matches(msg, keys.yank):
		if t, ok := m.selected(); ok && m.Copy != nil {
			if err := m.Copy(t.Text); err != nil {
				m.err = "copy: " + err.Error()
			} else {
				m.status = "copied"
			}
		}
	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, m.sync(m.app.State())
}

// withConfirm runs act; if act asked for confirmation the dialog opens and
// act runs again once the user answers yes. act returns a status line.
func (m *Model) withConfirm(act func() string) {
	m.dialog.prompt = ""
	status := act()
	if m.dialog.prompt != "" {
		m.mode = modeConfirm
		m.retry = act
		m.resize()
		return
	}
	m.status = status
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.dialog.approved = m.dialog.prompt
		m.dialog.prompt = ""
		act := m.retry
		m.retry = nil
		m.mode = modeBrowse
		if act != nil {
			m.status = act()
		}
		m.dialog.approved = ""
	case "n", "esc", "q":
		m.dialog.prompt = ""
		m.retry = nil
		m.mode = modeBrowse
	default:
		return m, nil
	}
	m.resize()
	return m, m.sync(m.app.State())
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := m.ti.Value()
		if strings.TrimSpace(text) == "" {
			m.err = "Todo cannot be empty"
			return m, nil
		}
		if m.mode == modeEdit {
			m.app.Submit(text)
		} else {
			m.app.Add(text)
		}
		m.leaveInput()
		return m, m.sync(m.app.State())
	case "esc":
		if m.mode == modeEdit {
			m.app.CancelEdit()
		}
		m.leaveInput()
		return m, m.sync(m.app.State())
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.err = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m Model) View() string {
	content := m.list.View()
	switch m.mode {
	case modeAdd, modeEdit:
		title := "Add new todo"
		if m.mode == modeEdit {
			title = "Edit todo"
		}
		if m.err != "" {
			title += " - " + errorStyle.Render(m.err)
		}
		content += "\n" + frameStyle.Render(title+"\n"+m.ti.View())
	case modeConfirm:
		content += "\n" + dialogStyle.Render(m.dialog.Pending()+"  "+mutedStyle.Render("(y/n)"))
	default:
		if m.err != "" {
			content += "\n" + errorStyle.Render(m.err)
		} else if m.status != "" {
			content += "\n" + successStyle.Render("✔ "+m.status)
		}
	}
	return frameStyle.Render(content)
}
