package history

import (
	"fmt"

	"github.com/goliatone/go-history/internal/hydrate"
)

// DecodeAt decodes the map snapshot at index into S through JSON.
func DecodeAt[S any](s *Stack[map[string]any], index int) (S, error) {
	var zero S
	entry, ok := s.At(index)
	if !ok {
		return zero, fmt.Errorf("%w: index %d with %d entries", ErrInvalidCursor, index, s.Len())
	}
	return hydrate.Decode[S](hydrate.Context{Index: index}, entry, false)
}

// DecodeCurrent decodes the current map snapshot of s into S.
func DecodeCurrent[S any](s *Stack[map[string]any]) (S, error) {
	return DecodeAt[S](s, s.Cursor())
}

// DecodeActive decodes the current snapshot of the active branch into S.
// Unknown fields are rejected.
func DecodeActive[S any](b *Branches[map[string]any]) (S, error) {
	var zero S
	active := b.Active()
	if active == nil {
		return zero, ErrNoActiveBranch
	}
	entry, ok := active.Current()
	if !ok {
		return zero, fmt.Errorf("%w: branch %q is empty", ErrInvalidCursor, b.ActiveName())
	}
	return hydrate.Decode[S](hydrate.Context{Branch: b.ActiveName(), Index: active.Cursor()}, entry, true)
}
