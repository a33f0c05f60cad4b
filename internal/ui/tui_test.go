package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/itask/internal/app"
	"github.com/idilsaglam/itask/internal/store/memstore"
)

func newTestModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	d := &Dialog{}
	a := app.New(app.Deps{Slot: memstore.New(nil), Confirm: d.Confirm})
	m := NewModel(a, d)
	m.Copy = func(string) error { return nil }
	return m, a
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEscape}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
)

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestAddToggleAndClear(t *testing.T) {
	m, a := newTestModel(t)

	m = press(t, m, runes("a"))
	assert.Equal(t, modeAdd, m.mode)
	m = press(t, m, runes("Buy milk"), enter)
	assert.Equal(t, modeBrowse, m.mode)
	require.Len(t, a.State().Tasks, 1)
	assert.Equal(t, "Buy milk", a.State().Tasks[0].Text)
	assert.Len(t, m.list.Items(), 1)

	m = press(t, m, space)
	assert.True(t, a.State().Tasks[0].Completed)
	assert.Empty(t, m.list.Items(), "finished hidden")

	m = press(t, m, runes("f"))
	assert.True(t, a.State().ShowFinished)
	assert.Len(t, m.list.Items(), 1)

	m = press(t, m, runes("c"))
	assert.Equal(t, modeConfirm, m.mode)
	assert.Equal(t, "Remove 1 finished todo(s)?", m.dialog.Pending())
	assert.Len(t, a.State().Tasks, 1, "nothing removed before the answer")

	m = press(t, m, runes("n"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Len(t, a.State().Tasks, 1)

	m = press(t, m, runes("c"), runes("y"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, a.State().Tasks)
	assert.Equal(t, "removed 1 finished", m.status)
}

func TestBlankAddIsRejected(t *testing.T) {
	m, a := newTestModel(t)
	m = press(t, m, runes("a"), runes("   "), enter)
	assert.Equal(t, modeAdd, m.mode)
	assert.NotEmpty(t, m.err)
	assert.Empty(t, a.State().Tasks)

	m = press(t, m, esc)
	assert.Equal(t, modeBrowse, m.mode)
}

func TestEditAndCancel(t *testing.T) {
	m, a := newTestModel(t)
	a.Add("typo")
	m = press(t, m, stateMsg(a.State()))

	m = press(t, m, runes("e"))
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "typo", m.ti.Value())
	assert.True(t, a.State().Editing())

	m = press(t, m, esc)
	assert.False(t, a.State().Editing())
	assert.Equal(t, "typo", a.State().Tasks[0].Text)

	m = press(t, m, runes("e"))
	m.ti.SetValue("fixed")
	m = press(t, m, enter)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "fixed", a.State().Tasks[0].Text)
	assert.Len(t, a.State().Tasks, 1)
}

func TestDeleteConfirmation(t *testing.T) {
	m, a := newTestModel(t)
	a.Add("x")
	m = press(t, m, stateMsg(a.State()))

	m = press(t, m, runes("d"))
	assert.Equal(t, "Delete this todo?", m.dialog.Pending())
	m = press(t, m, esc)
	assert.Len(t, a.State().Tasks, 1)

	m = press(t, m, runes("d"), runes("y"))
	assert.Empty(t, a.State().Tasks)
	assert.Equal(t, "deleted", m.status)
}

func TestSortAndCopy(t *testing.T) {
	m, a := newTestModel(t)
	a.Add("A")
	a.Add("B")
	m = press(t, m, stateMsg(a.State()))

	var copied string
	m.Copy = func(s string) error { copied = s; return nil }
	m = press(t, m, runes("y"))
	assert.Equal(t, "B", copied)
	assert.Equal(t, "copied", m.status)

	m.Copy = func(string) error { return errors.New("no clipboard") }
	m = press(t, m, runes("y"))
	assert.Contains(t, m.err, "no clipboard")

	m = press(t, m, space, runes("s"))
	assert.Equal(t, "A", a.State().Tasks[0].Text)
	assert.True(t, a.State().Tasks[1].Completed)
}

func TestStaleStateIgnored(t *testing.T) {
	m, a := newTestModel(t)
	old := a.State()
	a.Add("x")
	m = press(t, m, stateMsg(a.State()))
	require.Len(t, m.list.Items(), 1)

	m = press(t, m, stateMsg(old))
	assert.Len(t, m.list.Items(), 1)
	assert.Equal(t, a.State().Rev, m.State().Rev)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestDialogAcceptsApprovedPromptOnce(t *testing.T) {
	d := &Dialog{}
	assert.False(t, d.Confirm("p"))
	assert.Equal(t, "p", d.Pending())
	d.approved = "p"
	assert.True(t, d.Confirm("p"))
	assert.False(t, d.Confirm("p"))
}

func TestViewRenders(t *testing.T) {
	m, a := newTestModel(t)
	a.Add("visible todo")
	m = press(t, m, stateMsg(a.State()), tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "visible todo")

	m = press(t, m, runes("d"))
	assert.Contains(t, m.View(), "Delete this todo?")
}
