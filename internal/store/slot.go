// Package store keeps typed values mirrored into a durable key-value slot.
package store

import "errors"

// Slot is a synchronous string key/value store that survives restarts.
// There are no transactional guarantees across keys and no locking
// between processes; the last writer wins.
type Slot interface {
	// Get returns the raw value at key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}

// ErrUnavailable is returned by slots that can no longer accept reads or writes.
var ErrUnavailable = errors.New("store: slot unavailable")
