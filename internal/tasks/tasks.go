// Package tasks holds the pure transformations applied to a task list and
// the views derived from it. No function mutates its input; a no-op returns
// the input slice unchanged.
package tasks

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/itask/internal/model"
)

// Source supplies identity and time for new tasks.
type Source interface {
	NewID() string
	Now() time.Time
}

type defaultSource struct{}

func (defaultSource) NewID() string  { return uuid.NewString() }
func (defaultSource) Now() time.Time { return time.Now() }

// DefaultSource issues random UUIDs and wall-clock timestamps.
var DefaultSource Source = defaultSource{}

// Add prepends a new unfinished task with the trimmed text.
func Add(list []model.Task, text string, src Source) []model.Task {
	text = strings.TrimSpace(text)
	if text == "" {
		return list
	}
	if src == nil {
		src = DefaultSource
	}
	t := model.Task{
		ID:        src.NewID(),
		Text:      text,
		CreatedAt: src.Now().UnixMilli(),
	}
	out := make([]model.Task, 0, len(list)+1)
	out = append(out, t)
	return append(out, list...)
}

// Update replaces the text of the task with id.
func Update(list []model.Task, id, text string) []model.Task {
	text = strings.TrimSpace(text)
	if text == "" {
		return list
	}
	return replace(list, id, func(t model.Task) model.Task {
		t.Text = text
		return t
	})
}

// Toggle flips the completed flag of the task with id.
func Toggle(list []model.Task, id string) []model.Task {
	return replace(list, id, func(t model.Task) model.Task {
		t.Completed = !t.Completed
		return t
	})
}

func replace(list []model.Task, id string, fn func(model.Task) model.Task) []model.Task {
	i := index(list, id)
	if i < 0 {
		return list
	}
	out := slices.Clone(list)
	out[i] = fn(out[i])
	return out
}

// Remove drops the task with id.
func Remove(list []model.Task, id string) []model.Task {
	i := index(list, id)
	if i < 0 {
		return list
	}
	return slices.Delete(slices.Clone(list), i, i+1)
}

// ClearFinished drops every completed task.
func ClearFinished(list []model.Task) []model.Task {
	if FinishedCount(list) == 0 {
		return list
	}
	out := make([]model.Task, 0, len(list))
	for _, t := range list {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// SortUnfinishedFirstNewest puts unfinished tasks before finished ones,
// newest first within each group. Ties keep their input order.
func SortUnfinishedFirstNewest(list []model.Task) []model.Task {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})
	return out
}

func index(list []model.Task, id string) int {
	return slices.IndexFunc(list, func(t model.Task) bool { return t.ID == id })
}
