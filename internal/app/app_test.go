package app

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/itask/internal/model"
	"github.com/idilsaglam/itask/internal/store"
	"github.com/idilsaglam/itask/internal/store/memstore"
)

type seqSource struct{ n int }

func (s *seqSource) NewID() string  { s.n++; return fmt.Sprintf("t%d", s.n) }
func (s *seqSource) Now() time.Time { return time.UnixMilli(int64(1000 + s.n)) }

// recorder answers prompts from a queue and remembers what was asked.
type recorder struct {
	answers []bool
	asked   []string
}

func (r *recorder) confirm(prompt string) bool {
	r.asked = append(r.asked, prompt)
	if len(r.answers) == 0 {
		return false
	}
	a := r.answers[0]
	r.answers = r.answers[1:]
	return a
}

func newApp(t *testing.T, slot store.Slot, c Confirmer) *App {
	t.Helper()
	if slot == nil {
		slot = memstore.New(nil)
	}
	return New(Deps{Slot: slot, Confirm: c, Source: &seqSource{}})
}

func stored(t *testing.T, slot store.Slot, key string) []model.Task {
	t.Helper()
	raw, ok, err := slot.Get(key)
	require.NoError(t, err)
	require.True(t, ok, "key %s written", key)
	var list []model.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	return list
}

func TestAddPersists(t *testing.T) {
	slot := memstore.New(nil)
	a := newApp(t, slot, nil)

	assert.False(t, a.Add("   "))
	_, ok, _ := slot.Get(DefaultTasksKey)
	assert.False(t, ok, "no-op does not write")

	require.True(t, a.Add(" Buy milk "))
	s := a.State()
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, "Buy milk", s.Tasks[0].Text)
	assert.Equal(t, s.Tasks, stored(t, slot, DefaultTasksKey))
}

func TestBuyMilkScenario(t *testing.T) {
	a := newApp(t, nil, nil)
	a.Add("Buy milk")
	id := a.State().Tasks[0].ID

	a.Toggle(id)
	s := a.State()
	assert.True(t, s.Tasks[0].Completed)
	assert.Equal(t, 0, s.Remaining)
	assert.Equal(t, 1, s.Finished)
	assert.Empty(t, s.Visible, "finished hidden by default")

	assert.Equal(t, 1, a.ClearFinished())
	assert.Empty(t, a.State().Tasks)
}

func TestReloadRestoresState(t *testing.T) {
	slot := memstore.New(nil)
	a := newApp(t, slot, nil)
	a.Add("A")
	a.Add("B")
	a.Toggle(a.State().Tasks[1].ID)
	a.SetShowFinished(true)

	b := newApp(t, slot, nil)
	assert.Equal(t, a.State().Tasks, b.State().Tasks)
	assert.True(t, b.State().ShowFinished)
	assert.Len(t, b.State().Visible, 2)
}

func TestMalformedStorageFallsBack(t *testing.T) {
	slot := memstore.New(map[string]string{
		DefaultTasksKey:        `[{"id": 3}]`,
		DefaultShowFinishedKey: `"yes"`,
	})
	a := newApp(t, slot, nil)
	assert.Empty(t, a.State().Tasks)
	assert.False(t, a.State().ShowFinished)
}

func TestEditMode(t *testing.T) {
	a := newApp(t, nil, nil)
	a.Add("first")
	a.Add("second")
	first, second := a.State().Tasks[1], a.State().Tasks[0]

	assert.False(t, a.BeginEdit("missing"))
	assert.False(t, a.State().Editing())

	require.True(t, a.BeginEdit(first.ID))
	assert.Equal(t, first.ID, a.State().EditingID)
	assert.Equal(t, "first", a.State().Pending)

	// Starting another edit replaces the pending one.
	require.True(t, a.BeginEdit(second.ID))
	assert.Equal(t, "second", a.State().Pending)

	// Blank submit keeps edit mode and the list.
	assert.False(t, a.Submit("  "))
	assert.True(t, a.State().Editing())

	require.True(t, a.Submit(" second, edited "))
	s := a.State()
	assert.False(t, s.Editing())
	assert.Equal(t, "second, edited", s.Tasks[0].Text)
	assert.Equal(t, second.ID, s.Tasks[0].ID)
	assert.Equal(t, second.CreatedAt, s.Tasks[0].CreatedAt)
	assert.Len(t, s.Tasks, 2, "submit in edit mode does not add")

	// Outside edit mode Submit adds.
	require.True(t, a.Submit("third"))
	assert.Len(t, a.State().Tasks, 3)
}

func TestCancelEditDoesNotMutate(t *testing.T) {
	a := newApp(t, nil, nil)
	a.Add("keep me")
	before := a.State().Tasks
	rev := a.State().Rev

	a.BeginEdit(before[0].ID)
	a.CancelEdit()
	s := a.State()
	assert.False(t, s.Editing())
	assert.Empty(t, s.Pending)
	assert.Equal(t, before, s.Tasks)
	assert.Equal(t, rev+2, s.Rev)

	a.CancelEdit()
	assert.Equal(t, rev+2, a.State().Rev, "cancel outside edit mode is silent")
}

func TestDeleteAsksFirst(t *testing.T) {
	r := &recorder{answers: []bool{false, true}}
	a := newApp(t, nil, r.confirm)
	a.Add("x")
	id := a.State().Tasks[0].ID

	assert.False(t, a.Delete(id))
	assert.Len(t, a.State().Tasks, 1)

	assert.True(t, a.Delete(id))
	assert.Empty(t, a.State().Tasks)
	assert.Equal(t, []string{"Delete this todo?", "Delete this todo?"}, r.asked)

	assert.False(t, a.Delete(id))
	assert.Len(t, r.asked, 2, "unknown id is not prompted")
}

func TestDeleteEditedTaskLeavesEditMode(t *testing.T) {
	a := newApp(t, nil, nil)
	a.Add("x")
	id := a.State().Tasks[0].ID
	a.BeginEdit(id)

	require.True(t, a.Delete(id))
	assert.False(t, a.State().Editing())
	assert.Empty(t, a.State().Pending)
}

func TestClearFinishedPrompt(t *testing.T) {
	r := &recorder{answers: []bool{false, true}}
	a := newApp(t, nil, r.confirm)

	assert.Equal(t, 0, a.ClearFinished())
	assert.Empty(t, r.asked, "nothing finished, no prompt")

	a.Add("a")
	a.Add("b")
	a.Add("c")
	for _, task := range a.State().Tasks[:2] {
		a.Toggle(task.ID)
	}

	assert.Equal(t, 0, a.ClearFinished())
	assert.Len(t, a.State().Tasks, 3)
	assert.Equal(t, 2, a.ClearFinished())
	assert.Equal(t, []string{"Remove 2 finished todo(s)?", "Remove 2 finished todo(s)?"}, r.asked)
	assert.Len(t, a.State().Tasks, 1)
}

func TestSortIsPersisted(t *testing.T) {
	slot := memstore.New(nil)
	a := newApp(t, slot, nil)
	a.Add("A")
	a.Add("B")
	a.Add("C")
	c := a.State().Tasks[0]
	a.Toggle(c.ID)

	a.Sort()
	got := a.State().Tasks
	assert.Equal(t, []string{"B", "A", "C"}, []string{got[0].Text, got[1].Text, got[2].Text})
	assert.Equal(t, got, stored(t, slot, DefaultTasksKey))
}

func TestShowFinished(t *testing.T) {
	slot := memstore.New(nil)
	a := newApp(t, slot, nil)
	a.Add("x")
	a.Toggle(a.State().Tasks[0].ID)

	assert.Empty(t, a.State().Visible)
	a.ToggleShowFinished()
	assert.Len(t, a.State().Visible, 1)
	raw, _, _ := slot.Get(DefaultShowFinishedKey)
	assert.Equal(t, "true", raw)

	a.SetShowFinished(false)
	assert.Empty(t, a.State().Visible)
}

func TestSubscribe(t *testing.T) {
	a := newApp(t, nil, nil)
	var revs []uint64
	var last State
	cancel := a.Subscribe(func(s State) {
		revs = append(revs, s.Rev)
		last = s
	})

	a.Add("x")
	a.BeginEdit(a.State().Tasks[0].ID)
	a.ToggleShowFinished()
	a.Add("")
	assert.Equal(t, []uint64{1, 2, 3}, revs)
	assert.True(t, last.ShowFinished)
	assert.True(t, last.Editing())

	cancel()
	a.Add("y")
	assert.Len(t, revs, 3)
}

type brokenSlot struct{ *memstore.Store }

func (brokenSlot) Set(string, string) error { return store.ErrUnavailable }

func TestWriteFailureKeepsWorkingInMemory(t *testing.T) {
	a := newApp(t, brokenSlot{memstore.New(nil)}, nil)
	require.True(t, a.Add("x"))
	assert.Len(t, a.State().Tasks, 1)
	assert.ErrorIs(t, a.Err(), store.ErrUnavailable)
}

func TestNilConfirmerMeansYes(t *testing.T) {
	a := newApp(t, nil, nil)
	a.Add("x")
	assert.True(t, a.Delete(a.State().Tasks[0].ID))

	r := &recorder{}
	prev := a.SetConfirmer(r.confirm)
	assert.Nil(t, prev)
}
