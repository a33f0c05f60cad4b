package model

import "time"

// Task is the domain model for a todo entry.
// JSON field names match the persisted list layout.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"todo"`
	Completed bool   `json:"isCompleted"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// Created returns CreatedAt as a time.Time.
func (t Task) Created() time.Time { return time.UnixMilli(t.CreatedAt) }
