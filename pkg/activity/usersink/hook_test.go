package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-history/pkg/activity"
	"github.com/goliatone/go-history/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsBranchEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildBranchMergedEvent(activity.BranchEventInput{
		ActorID:    actorID.String(),
		UserID:     userID.String(),
		TenantID:   tenantID.String(),
		Channel:    "editor",
		Branch:     "a + b",
		Sources:    []string{"a", "b"},
		Entries:    2,
		Cursor:     1,
		MergeID:    "m-1",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != userID || record.TenantID != tenantID {
		t.Fatalf("unexpected identities: %+v", record)
	}
	if record.Verb != activity.VerbBranchMerged || record.ObjectType != activity.ObjectTypeBranch || record.ObjectID != "a + b" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "editor" {
		t.Fatalf("expected channel editor got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["merge_id"] != "m-1" || record.Data["entries"] != 2 {
		t.Fatalf("expected metadata passthrough got %v", record.Data)
	}
	if _, ok := record.Data["actor_ref"]; ok {
		t.Fatalf("did not expect actor_ref for uuid actor")
	}
}

func TestHookNotifyKeepsNonUUIDActors(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbBranchCreated,
		ActorID:    "editor-7",
		ObjectType: activity.ObjectTypeBranch,
		ObjectID:   "draft",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor uuid, got %s", record.ActorID)
	}
	if record.Data["actor_ref"] != "editor-7" {
		t.Fatalf("expected actor_ref, got %v", record.Data)
	}
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	errSink := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: errSink}}

	err := hook.Notify(context.Background(), activity.BuildBranchLockedEvent(activity.BranchEventInput{Branch: "a"}))
	if !errors.Is(err, errSink) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
