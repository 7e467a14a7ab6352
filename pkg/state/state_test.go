package state_test

import (
	"context"
	"errors"
	"testing"

	history "github.com/goliatone/go-history"
	"github.com/goliatone/go-history/pkg/state"
)

type doc = map[string]any

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		name    string
		ref     state.Ref
		want    string
		wantErr bool
	}{
		{name: "document", ref: state.Ref{Document: "notes"}, want: "document/notes"},
		{name: "tenant", ref: state.Ref{Tenant: "acme", Document: "notes"}, want: "tenant/acme/document/notes"},
		{name: "trimmed", ref: state.Ref{Tenant: " acme ", Document: " notes "}, want: "tenant/acme/document/notes"},
		{name: "missing document", ref: state.Ref{Tenant: "acme"}, wantErr: true},
		{name: "slash", ref: state.Ref{Document: "a/b"}, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("identifier: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func seed(t *testing.T) *history.Branches[doc] {
	t.Helper()
	b := history.NewBranches[doc]()
	main := history.NewStack[doc]()
	_ = main.Append(doc{"x": 1})
	_ = main.Append(doc{"x": 2})
	if err := b.NewBranch(main, "main"); err != nil {
		t.Fatalf("new branch: %v", err)
	}
	if err := b.CopyBranch("main", "draft"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	return b
}

func TestSaverRoundTrip(t *testing.T) {
	store := state.NewMemoryStore[doc]()
	saver := state.Saver[doc]{Store: store}
	ref := state.Ref{Tenant: "acme", Document: "notes"}
	ctx := context.Background()

	if _, _, ok, err := saver.Load(ctx, ref); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	meta, err := saver.Save(ctx, ref, seed(t), state.Meta{Extra: map[string]string{"source": "test"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.SnapshotID == "" || meta.ETag == "" || meta.UpdatedAt.IsZero() {
		t.Fatalf("expected store-owned metadata, got %+v", meta)
	}

	loaded, loadedMeta, ok, err := saver.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loadedMeta.ETag != meta.ETag || loadedMeta.Extra["source"] != "test" {
		t.Fatalf("unexpected loaded meta %+v", loadedMeta)
	}
	if loaded.ActiveName() != "main" || loaded.Len() != 2 {
		t.Fatalf("unexpected restored collection active=%q len=%d", loaded.ActiveName(), loaded.Len())
	}
	main, _ := loaded.Branch("main")
	if current, _ := main.Current(); current["x"] != 2 {
		t.Fatalf("unexpected current snapshot %+v", current)
	}
}

func TestMemoryStoreDetachesCheckpoints(t *testing.T) {
	store := state.NewMemoryStore[doc]()
	ref := state.Ref{Document: "notes"}
	ctx := context.Background()

	cp := seed(t).Checkpoint()
	if _, err := store.Save(ctx, ref, cp, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	cp.Branches["main"].Entries[0]["x"] = 100

	loaded, _, _, err := store.Load(ctx, ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Branches["main"].Entries[0]["x"] != 1 {
		t.Fatalf("stored checkpoint aliased caller data")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one record, got %d", store.Len())
	}
}

func TestSaverSaveRejectsStaleETag(t *testing.T) {
	store := state.NewMemoryStore[doc]()
	saver := state.Saver[doc]{Store: store}
	ref := state.Ref{Document: "notes"}
	ctx := context.Background()

	first, err := saver.Save(ctx, ref, seed(t), state.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := saver.Save(ctx, ref, seed(t), state.Meta{ETag: first.ETag}); err != nil {
		t.Fatalf("save with current etag: %v", err)
	}
	_, err = saver.Save(ctx, ref, seed(t), state.Meta{ETag: first.ETag})
	if !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
}

func TestSaverMutate(t *testing.T) {
	store := state.NewMemoryStore[doc]()
	saver := state.Saver[doc]{Store: store}
	ref := state.Ref{Document: "notes"}
	ctx := context.Background()

	branches, meta, err := saver.Mutate(ctx, ref, state.Meta{}, func(b *history.Branches[doc]) error {
		s := history.NewStack[doc]()
		_ = s.Append(doc{"x": 1})
		return b.NewBranch(s, "main")
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if branches.Len() != 1 || meta.ETag == "" {
		t.Fatalf("unexpected mutate result len=%d meta=%+v", branches.Len(), meta)
	}

	_, _, err = saver.Mutate(ctx, ref, meta, func(b *history.Branches[doc]) error {
		return b.CopyBranch("main", "draft")
	})
	if err != nil {
		t.Fatalf("mutate with etag: %v", err)
	}

	_, _, err = saver.Mutate(ctx, ref, meta, func(*history.Branches[doc]) error {
		t.Fatalf("mutator must not run on stale etag")
		return nil
	})
	if !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}

	errBoom := errors.New("boom")
	before, current, _, _ := saver.Load(ctx, ref)
	_, _, err = saver.Mutate(ctx, ref, state.Meta{}, func(b *history.Branches[doc]) error {
		b.DeleteBranch("main")
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	after, afterMeta, _, _ := saver.Load(ctx, ref)
	if after.Len() != before.Len() || afterMeta.ETag != current.ETag {
		t.Fatalf("failed mutation was saved")
	}
}

func TestSaverRequiresStore(t *testing.T) {
	saver := state.Saver[doc]{}
	if _, _, _, err := saver.Load(context.Background(), state.Ref{Document: "x"}); err == nil {
		t.Fatalf("expected missing store error")
	}
	if _, err := saver.Save(context.Background(), state.Ref{Document: "x"}, history.NewBranches[doc](), state.Meta{}); err == nil {
		t.Fatalf("expected missing store error")
	}
}
