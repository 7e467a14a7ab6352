package activity

import (
	"context"
	"testing"
)

func TestBuildBranchMergedEventIncludesSources(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := BranchEventInput{
		ActorID:  " actor ",
		TenantID: " tenant ",
		Branch:   " a + b ",
		Sources:  []string{"a", "b"},
		Entries:  3,
		Cursor:   1,
		MergeID:  "merge-1",
		Metadata: meta,
	}

	event := BuildBranchMergedEvent(input)

	if event.Verb != VerbBranchMerged {
		t.Fatalf("expected verb %s got %s", VerbBranchMerged, event.Verb)
	}
	if event.ObjectType != ObjectTypeBranch || event.ObjectID != "a + b" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.TenantID != "tenant" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["entries"] != 3 || event.Metadata["cursor"] != 1 || event.Metadata["locked"] != false {
		t.Fatalf("expected stack metadata, got %+v", event.Metadata)
	}
	sources, ok := event.Metadata["sources"].([]string)
	if !ok || len(sources) != 2 || sources[0] != "a" || sources[1] != "b" {
		t.Fatalf("expected sources metadata, got %v", event.Metadata["sources"])
	}
	if event.Metadata["merge_id"] != "merge-1" {
		t.Fatalf("expected merge_id, got %v", event.Metadata["merge_id"])
	}
	if _, ok := meta["entries"]; ok {
		t.Fatalf("input metadata must not be mutated")
	}
	input.Sources[0] = "changed"
	if sources[0] != "a" {
		t.Fatalf("expected sources to be copied")
	}
}

func TestBranchEventVerbs(t *testing.T) {
	builders := map[string]func(BranchEventInput) Event{
		VerbBranchCreated:  BuildBranchCreatedEvent,
		VerbBranchDeleted:  BuildBranchDeletedEvent,
		VerbBranchSelected: BuildBranchSelectedEvent,
		VerbBranchCopied:   BuildBranchCopiedEvent,
		VerbBranchRenamed:  BuildBranchRenamedEvent,
		VerbBranchLocked:   BuildBranchLockedEvent,
		VerbBranchUnlocked: BuildBranchUnlockedEvent,
		VerbBranchMerged:   BuildBranchMergedEvent,
	}

	capture := &CaptureHook{}
	for verb, build := range builders {
		event := build(BranchEventInput{Branch: "draft", Cursor: -1})
		if event.Verb != verb {
			t.Fatalf("expected verb %q, got %q", verb, event.Verb)
		}
		if err := (Hooks{capture}).Notify(context.Background(), event); err != nil {
			t.Fatalf("notify %s: %v", verb, err)
		}
	}
	if len(capture.Events) != len(builders) {
		t.Fatalf("expected %d events, got %d", len(builders), len(capture.Events))
	}
}

func TestBuildBranchEventWithoutNameIsDropped(t *testing.T) {
	capture := &CaptureHook{}
	event := BuildBranchDeletedEvent(BranchEventInput{Branch: "  "})
	if err := (Hooks{capture}).Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected event without object id to be dropped")
	}
}
