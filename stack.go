package history

import (
	"fmt"

	"github.com/goliatone/go-history/layering"
)

// Stack is a linear undo/redo history of snapshots with a single cursor.
// Snapshots are deep copied on the way in and on the way out, so callers never
// alias stored entries.
//
// A Stack is not safe for concurrent use.
type Stack[T any] struct {
	entries []T
	cursor  int
	locked  bool

	cfg stackConfig[T]
}

// NewStack constructs an empty stack.
func NewStack[T any](opts ...Option[T]) *Stack[T] {
	return &Stack[T]{
		cursor: -1,
		cfg:    applyOptions(opts),
	}
}

// Append stores a copy of state after the cursor, discarding any entries the
// cursor had stepped back over, and resolves the new current snapshot. Append
// always mutates the stack; on a locked stack the returned error comes from
// the rejection handler.
func (s *Stack[T]) Append(state T) error {
	if s.cursor < len(s.entries)-1 {
		clear(s.entries[s.cursor+1:])
		s.entries = s.entries[:s.cursor+1]
	}
	s.entries = append(s.entries, layering.Clone(state))
	s.cursor = len(s.entries) - 1
	return s.resolve("append")
}

// Next moves the cursor one entry forward and resolves. At the last entry the
// stack is left untouched and the rejection handler is called.
func (s *Stack[T]) Next() error {
	if len(s.entries) > 0 && s.cursor < len(s.entries)-1 {
		s.cursor++
		return s.resolve("next")
	}
	return s.reject("next")
}

// Prev moves the cursor one entry back and resolves. At the first entry the
// stack is left untouched and the rejection handler is called.
func (s *Stack[T]) Prev() error {
	if len(s.entries) > 0 && s.cursor > 0 {
		s.cursor--
		return s.resolve("prev")
	}
	return s.reject("prev")
}

// Clear drops every entry and fires OnClear.
func (s *Stack[T]) Clear() {
	clear(s.entries)
	s.entries = nil
	s.cursor = -1
	s.cfg.listener.OnClear()
}

// Resolve notifies the current snapshot: OnReject when locked, OnChange
// otherwise.
func (s *Stack[T]) Resolve() error {
	return s.resolve("resolve")
}

func (s *Stack[T]) resolve(op string) error {
	if s.locked {
		return s.reject(op)
	}
	s.cfg.listener.OnChange(s.current())
	return nil
}

func (s *Stack[T]) reject(op string) error {
	if err := s.cfg.listener.OnReject(s.current()); err != nil {
		return &RejectionError{
			Op:     op,
			Cursor: s.cursor,
			Len:    len(s.entries),
			Locked: s.locked,
			Err:    err,
		}
	}
	return nil
}

func (s *Stack[T]) current() T {
	var zero T
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		return zero
	}
	return layering.Clone(s.entries[s.cursor])
}

// Current returns a copy of the snapshot under the cursor.
func (s *Stack[T]) Current() (T, bool) {
	if s.cursor < 0 {
		var zero T
		return zero, false
	}
	return s.current(), true
}

// At returns a copy of the entry at index.
func (s *Stack[T]) At(index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(s.entries) {
		return zero, false
	}
	return layering.Clone(s.entries[index]), true
}

// Entries returns copies of every entry in chronological order.
func (s *Stack[T]) Entries() []T {
	if len(s.entries) == 0 {
		return nil
	}
	out := make([]T, len(s.entries))
	for i := range s.entries {
		out[i] = layering.Clone(s.entries[i])
	}
	return out
}

// Len returns the number of entries.
func (s *Stack[T]) Len() int {
	return len(s.entries)
}

// Cursor returns the index of the current entry, -1 when empty.
func (s *Stack[T]) Cursor() int {
	return s.cursor
}

// HasNext reports whether the cursor is before the last entry.
func (s *Stack[T]) HasNext() bool {
	return s.cursor < len(s.entries)-1
}

// HasPrev reports whether the cursor is after the first entry.
func (s *Stack[T]) HasPrev() bool {
	return s.cursor > 0
}

// Locked reports whether success notifications are suppressed.
func (s *Stack[T]) Locked() bool {
	return s.locked
}

// Lock routes every later resolve to the rejection handler. Entries and
// cursor still move.
func (s *Stack[T]) Lock() {
	s.locked = true
}

// Unlock restores change notifications.
func (s *Stack[T]) Unlock() {
	s.locked = false
}

// Clone returns an independent deep copy sharing the same listener, logger and
// evaluator configuration.
func (s *Stack[T]) Clone() *Stack[T] {
	return &Stack[T]{
		entries: s.Entries(),
		cursor:  s.cursor,
		locked:  s.locked,
		cfg:     s.cfg.clone(),
	}
}

// StackCheckpoint is a detached export of a stack's entries and cursor.
type StackCheckpoint[T any] struct {
	Entries []T  `json:"entries"`
	Cursor  int  `json:"cursor"`
	Locked  bool `json:"locked,omitempty"`
}

// Checkpoint exports a deep copy of the stack contents.
func (s *Stack[T]) Checkpoint() StackCheckpoint[T] {
	return StackCheckpoint[T]{
		Entries: s.Entries(),
		Cursor:  s.cursor,
		Locked:  s.locked,
	}
}

// RestoreStack rebuilds a stack from a checkpoint. No notification is fired.
func RestoreStack[T any](cp StackCheckpoint[T], opts ...Option[T]) (*Stack[T], error) {
	if err := validateCursor(cp.Cursor, len(cp.Entries)); err != nil {
		return nil, err
	}
	s := NewStack(opts...)
	for _, entry := range cp.Entries {
		s.entries = append(s.entries, layering.Clone(entry))
	}
	s.cursor = cp.Cursor
	s.locked = cp.Locked
	return s, nil
}

func validateCursor(cursor, length int) error {
	if length == 0 && cursor != -1 {
		return fmt.Errorf("%w: cursor %d with no entries", ErrInvalidCursor, cursor)
	}
	if length > 0 && (cursor < 0 || cursor >= length) {
		return fmt.Errorf("%w: cursor %d with %d entries", ErrInvalidCursor, cursor, length)
	}
	return nil
}

// clampCursor keeps cursor inside [-1, length-1] and off -1 when entries exist.
func clampCursor(cursor, length int) int {
	if length == 0 {
		return -1
	}
	if cursor < 0 {
		return 0
	}
	if cursor > length-1 {
		return length - 1
	}
	return cursor
}
