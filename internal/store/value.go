package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Value binds one slot key to one JSON-serializable value.
// It is hydrated once by Open and written through on every change.
// A Value assumes a single logical writer and is not safe for concurrent use.
type Value[T any] struct {
	slot   Slot
	key    string
	val    T
	err    error
	logger *log.Logger
	schema *jsonschema.Schema
	check  func(T) error

	subs   []subscriber[T]
	nextID int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Option configures a Value at Open.
type Option[T any] func(*Value[T])

// WithLogger sets the logger used for read and write diagnostics.
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(v *Value[T]) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithSchema validates the raw stored document before decoding it.
func WithSchema[T any](s *jsonschema.Schema) Option[T] {
	return func(v *Value[T]) { v.schema = s }
}

// WithCheck validates the decoded value during hydration.
func WithCheck[T any](fn func(T) error) Option[T] {
	return func(v *Value[T]) { v.check = fn }
}

// Open reads key from slot and returns a Value holding the stored data,
// or def when the key is absent, empty or cannot be decoded. Open never
// fails and never writes; def is persisted on the first Set.
func Open[T any](slot Slot, key string, def T, opts ...Option[T]) *Value[T] {
	v := &Value[T]{
		slot:   slot,
		key:    key,
		val:    def,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(v)
	}

	loaded, err := v.load()
	if err != nil {
		v.logger.Warn("stored value ignored, using default", "key", key, "err", err)
		return v
	}
	if loaded != nil {
		v.val = *loaded
		v.logger.Debug("hydrated", "key", key)
	}
	return v
}

func (v *Value[T]) load() (*T, error) {
	raw, ok, err := v.slot.Get(v.key)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	if v.schema != nil {
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		if err := v.schema.Validate(doc); err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if v.check != nil {
		if err := v.check(out); err != nil {
			return nil, fmt.Errorf("check: %w", err)
		}
	}
	return &out, nil
}

// Key returns the slot key this value is bound to.
func (v *Value[T]) Key() string { return v.key }

// Get returns the current in-memory value.
func (v *Value[T]) Get() T { return v.val }

// Err returns the error of the most recent write, or nil once a write succeeds.
func (v *Value[T]) Err() error { return v.err }

// Set replaces the value, writes it to the slot and notifies subscribers.
// A failed write is logged and leaves the in-memory value updated.
func (v *Value[T]) Set(next T) {
	v.val = next
	v.err = v.persist()
	if v.err != nil {
		v.logger.Error("write failed, keeping value in memory", "key", v.key, "err", v.err)
	}
	for _, s := range append([]subscriber[T](nil), v.subs...) {
		s.fn(next)
	}
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) { v.Set(fn(v.val)) }

func (v *Value[T]) persist() error {
	b, err := json.Marshal(v.val)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := v.slot.Set(v.key, string(b)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Subscribe registers fn to be called after every Set. The returned
// function removes the subscription.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, s := range v.subs {
			if s.id == id {
				v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
				return
			}
		}
	}
}
