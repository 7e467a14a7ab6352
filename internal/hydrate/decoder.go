// Package hydrate turns map snapshots stored in a history into typed values.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the history entry being decoded.
type Context struct {
	Branch string
	Index  int
}

func (c Context) String() string {
	if c.Branch == "" {
		return fmt.Sprintf("entry %d", c.Index)
	}
	return fmt.Sprintf("entry %d of %q", c.Index, c.Branch)
}

// Decode converts snapshot into T through its JSON form. When strict is set a
// key with no matching field in T fails the decode.
func Decode[T any](ctx Context, snapshot map[string]any, strict bool) (T, error) {
	var out T
	if snapshot == nil {
		return out, fmt.Errorf("hydrate: %s has no snapshot", ctx)
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return out, fmt.Errorf("hydrate: encode %s: %w", ctx, err)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
	}
	return out, nil
}
