package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/idilsaglam/itask/internal/model"
)

// RemainingCount counts unfinished tasks.
func RemainingCount(list []model.Task) int {
	n := 0
	for _, t := range list {
		if !t.Completed {
			n++
		}
	}
	return n
}

// FinishedCount counts completed tasks.
func FinishedCount(list []model.Task) int {
	return len(list) - RemainingCount(list)
}

// Visible returns the tasks to display, in list order. Finished tasks are
// hidden unless showFinished is set.
func Visible(list []model.Task, showFinished bool) []model.Task {
	out := make([]model.Task, 0, len(list))
	for _, t := range list {
		if showFinished || !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the task with id.
func Find(list []model.Task, id string) (model.Task, bool) {
	if i := index(list, id); i >= 0 {
		return list[i], true
	}
	return model.Task{}, false
}

var (
	ErrDuplicateID = errors.New("duplicate task id")
	ErrBlankText   = errors.New("blank task text")
	ErrMissingID   = errors.New("missing task id")
)

// Validate reports whether list satisfies the stored-list invariants:
// every task has an id, ids are unique and no text is blank.
func Validate(list []model.Task) error {
	seen := make(map[string]struct{}, len(list))
	for i, t := range list {
		if t.ID == "" {
			return fmt.Errorf("task %d: %w", i, ErrMissingID)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("task %d (%s): %w", i, t.ID, ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
		if strings.TrimSpace(t.Text) == "" {
			return fmt.Errorf("task %d (%s): %w", i, t.ID, ErrBlankText)
		}
	}
	return nil
}
