// Package app binds the task list and the display preference to their
// slot keys and exposes the user actions that change them.
//
// Every action runs to completion before returning: the new list is
// written through to the slot and subscribers are notified synchronously.
package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/itask/internal/model"
	"github.com/idilsaglam/itask/internal/store"
	"github.com/idilsaglam/itask/internal/tasks"
)

const (
	DefaultTasksKey        = "itask_todos_v1"
	DefaultShowFinishedKey = "itask_show_finished"
)

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// Deps are the collaborators of an App. Only Slot is required.
type Deps struct {
	Slot            store.Slot
	Logger          *log.Logger
	Confirm         Confirmer
	Source          tasks.Source
	TasksKey        string
	ShowFinishedKey string
}

// State is a snapshot of everything a renderer needs.
type State struct {
	Rev          uint64
	Tasks        []model.Task
	Visible      []model.Task
	Remaining    int
	Finished     int
	ShowFinished bool
	EditingID    string // empty when not editing
	Pending      string // text captured when the edit began
}

// Editing reports whether a task is in edit mode.
func (s State) Editing() bool { return s.EditingID != "" }

type App struct {
	todos        *store.Value[[]model.Task]
	showFinished *store.Value[bool]

	logger  *log.Logger
	confirm Confirmer
	src     tasks.Source

	editingID string
	pending   string

	rev    uint64
	subs   map[int]func(State)
	order  []int
	nextID int
}

// New hydrates both store-bound values from d.Slot.
func New(d Deps) *App {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.TasksKey == "" {
		d.TasksKey = DefaultTasksKey
	}
	if d.ShowFinishedKey == "" {
		d.ShowFinishedKey = DefaultShowFinishedKey
	}
	if d.Source == nil {
		d.Source = tasks.DefaultSource
	}
	a := &App{
		logger:  d.Logger,
		confirm: d.Confirm,
		src:     d.Source,
		subs:    map[int]func(State){},
	}
	a.todos = store.Open(d.Slot, d.TasksKey, []model.Task{},
		store.WithLogger[[]model.Task](d.Logger),
		store.WithSchema[[]model.Task](tasks.Schema),
		store.WithCheck(tasks.Validate),
	)
	a.showFinished = store.Open(d.Slot, d.ShowFinishedKey, false,
		store.WithLogger[bool](d.Logger),
	)
	a.todos.Subscribe(func([]model.Task) { a.changed() })
	a.showFinished.Subscribe(func(bool) { a.changed() })
	return a
}

// State returns the current snapshot.
func (a *App) State() State {
	list := a.todos.Get()
	show := a.showFinished.Get()
	return State{
		Rev:          a.rev,
		Tasks:        list,
		Visible:      tasks.Visible(list, show),
		Remaining:    tasks.RemainingCount(list),
		Finished:     tasks.FinishedCount(list),
		ShowFinished: show,
		EditingID:    a.editingID,
		Pending:      a.pending,
	}
}

// Subscribe registers fn to receive a snapshot after every change.
func (a *App) Subscribe(fn func(State)) (cancel func()) {
	a.nextID++
	id := a.nextID
	a.subs[id] = fn
	a.order = append(a.order, id)
	return func() { delete(a.subs, id) }
}

func (a *App) changed() {
	a.rev++
	s := a.State()
	for _, id := range a.order {
		if fn, ok := a.subs[id]; ok {
			fn(s)
		}
	}
}

// Err returns the most recent persistence error, if any.
func (a *App) Err() error {
	if err := a.todos.Err(); err != nil {
		return err
	}
	return a.showFinished.Err()
}

// setTasks stores next only if an operation actually produced a new list.
func (a *App) setTasks(prev, next []model.Task) bool {
	if sameSlice(prev, next) {
		return false
	}
	a.todos.Set(next)
	return true
}

func sameSlice(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// Add creates a task from text. Blank text is ignored.
func (a *App) Add(text string) bool {
	prev := a.todos.Get()
	ok := a.setTasks(prev, tasks.Add(prev, text, a.src))
	if ok {
		a.logger.Debug("task added", "count", len(a.todos.Get()))
	}
	return ok
}

// Submit adds text as a new task, or, in edit mode, replaces the text of
// the task being edited and leaves edit mode. Blank text is ignored and
// keeps edit mode.
func (a *App) Submit(text string) bool {
	if a.editingID == "" {
		return a.Add(text)
	}
	prev := a.todos.Get()
	next := tasks.Update(prev, a.editingID, text)
	if sameSlice(prev, next) {
		if _, exists := tasks.Find(prev, a.editingID); !exists {
			a.CancelEdit()
		}
		return false
	}
	a.editingID, a.pending = "", ""
	a.todos.Set(next)
	return true
}

// Edit replaces the text of task id without going through edit mode.
func (a *App) Edit(id, text string) bool {
	prev := a.todos.Get()
	return a.setTasks(prev, tasks.Update(prev, id, text))
}

// BeginEdit enters edit mode for id, capturing its text. Any edit already
// in progress is discarded.
func (a *App) BeginEdit(id string) bool {
	t, ok := tasks.Find(a.todos.Get(), id)
	if !ok {
		return false
	}
	a.editingID, a.pending = t.ID, t.Text
	a.changed()
	return true
}

// CancelEdit leaves edit mode without touching the list.
func (a *App) CancelEdit() {
	if a.editingID == "" && a.pending == "" {
		return
	}
	a.editingID, a.pending = "", ""
	a.changed()
}

// Toggle flips the completed flag of id.
func (a *App) Toggle(id string) bool {
	prev := a.todos.Get()
	return a.setTasks(prev, tasks.Toggle(prev, id))
}

// Delete removes id after confirmation. Deleting the task being edited
// leaves edit mode.
func (a *App) Delete(id string) bool {
	prev := a.todos.Get()
	if _, ok := tasks.Find(prev, id); !ok {
		return false
	}
	if !a.ask("Delete this todo?") {
		return false
	}
	if a.editingID == id {
		a.editingID, a.pending = "", ""
	}
	a.todos.Set(tasks.Remove(prev, id))
	return true
}

// ClearFinished removes every completed task after confirmation and
// returns how many were removed.
func (a *App) ClearFinished() int {
	prev := a.todos.Get()
	n := tasks.FinishedCount(prev)
	if n == 0 {
		return 0
	}
	if !a.ask(fmt.Sprintf("Remove %d finished todo(s)?", n)) {
		return 0
	}
	next := tasks.ClearFinished(prev)
	if a.editingID != "" {
		if _, ok := tasks.Find(next, a.editingID); !ok {
			a.editingID, a.pending = "", ""
		}
	}
	a.todos.Set(next)
	a.logger.Debug("finished tasks cleared", "removed", n)
	return n
}

// Sort reorders the stored list: unfinished first, newest first.
func (a *App) Sort() {
	a.todos.Set(tasks.SortUnfinishedFirstNewest(a.todos.Get()))
}

// SetShowFinished stores the display preference.
func (a *App) SetShowFinished(show bool) { a.showFinished.Set(show) }

// ToggleShowFinished flips the display preference.
func (a *App) ToggleShowFinished() { a.showFinished.Update(func(v bool) bool { return !v }) }

// SetConfirmer replaces the confirmation capability and returns the
// previous one.
func (a *App) SetConfirmer(c Confirmer) (prev Confirmer) {
	prev, a.confirm = a.confirm, c
	return prev
}

func (a *App) ask(prompt string) bool {
	if a.confirm == nil {
		return true
	}
	return a.confirm(prompt)
}
