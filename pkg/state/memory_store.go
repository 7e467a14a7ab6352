package state

import (
	"context"
	"sync"
	"time"

	history "github.com/goliatone/go-history"
	"github.com/goliatone/go-history/layering"
	"github.com/google/uuid"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. It uses Ref.Identifier() as its deterministic key. Every save
// gets a fresh SnapshotID and ETag.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	now     func() time.Time
}

type memoryRecord[T any] struct {
	checkpoint history.Checkpoint[T]
	meta       Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		records: map[string]memoryRecord[T]{},
		now:     time.Now,
	}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (history.Checkpoint[T], Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return history.Checkpoint[T]{}, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return history.Checkpoint[T]{}, Meta{}, false, nil
	}
	return layering.Clone(record.checkpoint), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, cp history.Checkpoint[T], meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	stored := cloneMeta(meta)
	stored.SnapshotID = uuid.NewString()
	stored.ETag = uuid.NewString()
	now := s.now
	if now == nil {
		now = time.Now
	}
	stored.UpdatedAt = now().UTC()

	s.mu.Lock()
	if s.records == nil {
		s.records = map[string]memoryRecord[T]{}
	}
	s.records[key] = memoryRecord[T]{checkpoint: layering.Clone(cp), meta: stored}
	s.mu.Unlock()
	return cloneMeta(stored), nil
}

// Len returns the number of stored collections.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
