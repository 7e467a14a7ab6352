package history

import (
	"fmt"

	"github.com/goliatone/go-history/layering"
	"github.com/goliatone/go-history/pkg/activity"
	"github.com/google/uuid"
)

// MergeName returns the name Merge registers its result under.
func MergeName(base, other string) string {
	return base + " + " + other
}

// Merge combines base and other into a new branch named MergeName(base,
// other) and returns that name.
//
// The result has one entry per entry of other. Where base has an entry at the
// same index the two are combined with layering.Union, other's top level
// fields winning; otherwise other's entry is copied as is. Base entries past
// the end of other are dropped. The cursor is base's cursor clamped to the
// new entries.
//
// The merged stack is resolved, both sources are locked through LockBranch,
// and the result is registered and selected through NewBranch. A missing
// source or a taken target name fails before anything changes.
func (b *Branches[T]) Merge(base, other string) (string, error) {
	trace, err := b.merge(base, other)
	if err != nil {
		return "", err
	}
	return trace.Target, nil
}

// MergeWithTrace runs Merge and returns per entry field provenance.
func (b *Branches[T]) MergeWithTrace(base, other string) (MergeTrace, error) {
	return b.merge(base, other)
}

func (b *Branches[T]) merge(baseName, otherName string) (MergeTrace, error) {
	const op = "merge"
	target := MergeName(baseName, otherName)

	base, err := b.mergeSource(baseName)
	if err != nil {
		return MergeTrace{}, err
	}
	other, err := b.mergeSource(otherName)
	if err != nil {
		return MergeTrace{}, err
	}
	if _, exists := b.branches[target]; exists {
		return MergeTrace{}, b.fail(op, target, ErrBranchExists)
	}

	merged := base.Clone()
	if len(b.cfg.stackOptions) > 0 {
		merged.cfg = applyOptions(b.cfg.stackOptions)
	}
	merged.locked = false

	trace := MergeTrace{
		ID:      uuid.NewString(),
		Base:    baseName,
		Other:   otherName,
		Target:  target,
		Entries: make([]EntryProvenance, len(other.entries)),
	}
	entries := make([]T, len(other.entries))
	for i := range other.entries {
		prov := EntryProvenance{Index: i, Fields: map[string]string{}}
		if i < len(base.entries) {
			entries[i] = layering.Union(base.entries[i], other.entries[i])
			for _, field := range layering.Fields(base.entries[i]) {
				prov.Fields[field] = baseName
			}
		} else {
			entries[i] = layering.Clone(other.entries[i])
			prov.Verbatim = true
		}
		for _, field := range layering.Fields(other.entries[i]) {
			prov.Fields[field] = otherName
		}
		trace.Entries[i] = prov
	}
	if dropped := len(base.entries) - len(other.entries); dropped > 0 {
		trace.Dropped = dropped
	}

	merged.entries = entries
	merged.cursor = clampCursor(base.cursor, len(entries))
	trace.Cursor = merged.cursor

	if err := merged.Resolve(); err != nil {
		return MergeTrace{}, b.fail(op, target, err)
	}
	if err := b.LockBranch(baseName); err != nil {
		return MergeTrace{}, err
	}
	if err := b.LockBranch(otherName); err != nil {
		return MergeTrace{}, err
	}

	if err := b.NewBranch(merged, target); err != nil {
		return trace, err
	}
	b.emit(activity.BuildBranchMergedEvent, target, merged, []string{baseName, otherName}, trace.ID)
	return trace, nil
}

func (b *Branches[T]) mergeSource(name string) (*Stack[T], error) {
	s, ok := b.branches[name]
	if !ok {
		return nil, b.fail("merge", name, fmt.Errorf("%w: %w", ErrInvalidType, ErrBranchNotFound))
	}
	if s == nil {
		return nil, b.fail("merge", name, ErrInvalidType)
	}
	return s, nil
}
