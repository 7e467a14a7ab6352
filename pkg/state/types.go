package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	history "github.com/goliatone/go-history"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted branch collection. Tenant is optional.
type Ref struct {
	Tenant   string
	Document string
}

// Identifier returns the canonical storage key for the reference.
func (r Ref) Identifier() (string, error) {
	document := strings.TrimSpace(r.Document)
	if document == "" {
		return "", fmt.Errorf("state: document is required")
	}
	if strings.Contains(document, "/") {
		return "", fmt.Errorf("state: document %q must not contain '/'", document)
	}
	tenant := strings.TrimSpace(r.Tenant)
	if tenant == "" {
		return "document/" + document, nil
	}
	return fmt.Sprintf("tenant/%s/document/%s", tenant, document), nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one checkpoint for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (cp history.Checkpoint[T], meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, cp history.Checkpoint[T], meta Meta) (Meta, error)
}

// Mutator edits a loaded collection before it is saved back.
type Mutator[T any] func(*history.Branches[T]) error

// Saver moves branch collections in and out of a Store. Options are applied
// to every collection it restores.
type Saver[T any] struct {
	Store   Store[T]
	Options []history.BranchOption[T]
}

// Load restores the collection stored under ref. ok is false when nothing
// is stored.
func (s Saver[T]) Load(ctx context.Context, ref Ref) (*history.Branches[T], Meta, bool, error) {
	if s.Store == nil {
		return nil, Meta{}, false, fmt.Errorf("state: store is required")
	}
	cp, meta, ok, err := s.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("state: load %q: %w", ref.Document, err)
	}
	if !ok {
		return nil, Meta{}, false, nil
	}
	branches, err := history.RestoreBranches(cp, s.Options...)
	if err != nil {
		return nil, meta, false, fmt.Errorf("state: restore %q: %w", ref.Document, err)
	}
	return branches, meta, true, nil
}

// Save checkpoints branches under ref. When meta.ETag is set it must match
// the stored ETag.
func (s Saver[T]) Save(ctx context.Context, ref Ref, branches *history.Branches[T], meta Meta) (Meta, error) {
	if s.Store == nil {
		return Meta{}, fmt.Errorf("state: store is required")
	}
	if branches == nil {
		return Meta{}, fmt.Errorf("state: branches are required")
	}
	loadedMeta := Meta{}
	if meta.ETag != "" {
		_, current, ok, err := s.Store.Load(ctx, ref)
		if err != nil {
			return Meta{}, fmt.Errorf("state: load %q: %w", ref.Document, err)
		}
		if ok {
			loadedMeta = current
		}
		if err := checkETag(meta, loadedMeta); err != nil {
			return loadedMeta, err
		}
	}
	saved, err := s.Store.Save(ctx, ref, branches.Checkpoint(), mergeMeta(loadedMeta, meta))
	if err != nil {
		return Meta{}, fmt.Errorf("state: save %q: %w", ref.Document, err)
	}
	return saved, nil
}

// Mutate loads the collection under ref, or starts an empty one, applies fn
// and saves the result. Nothing is saved when fn fails.
func (s Saver[T]) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator[T]) (*history.Branches[T], Meta, error) {
	if s.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	branches, loadedMeta, ok, err := s.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, err
	}
	if !ok {
		branches = history.NewBranches(s.Options...)
		loadedMeta = Meta{}
	}
	if err := checkETag(meta, loadedMeta); err != nil {
		return nil, loadedMeta, err
	}

	if err := fn(branches); err != nil {
		return nil, loadedMeta, err
	}

	saved, err := s.Store.Save(ctx, ref, branches.Checkpoint(), mergeMeta(loadedMeta, meta))
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q: %w", ref.Document, err)
	}
	return branches, saved, nil
}

func checkETag(expected, loaded Meta) error {
	if expected.ETag != "" && loaded.ETag != "" && expected.ETag != loaded.ETag {
		return fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected.ETag, loaded.ETag)
	}
	return nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
