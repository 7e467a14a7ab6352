package activity

import (
	"strings"
	"time"
)

// Verbs emitted for branch lifecycle events.
const (
	VerbBranchCreated  = "branch.created"
	VerbBranchDeleted  = "branch.deleted"
	VerbBranchSelected = "branch.selected"
	VerbBranchCopied   = "branch.copied"
	VerbBranchRenamed  = "branch.renamed"
	VerbBranchLocked   = "branch.locked"
	VerbBranchUnlocked = "branch.unlocked"
	VerbBranchMerged   = "branch.merged"
)

// ObjectTypeBranch is the object type of every branch event.
const ObjectTypeBranch = "branch"

// BranchEventInput describes the common fields for branch lifecycle events.
// Sources names the branches an operation read from: the original name for a
// copy or rename, both inputs for a merge.
type BranchEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Branch     string
	Sources    []string
	Entries    int
	Cursor     int
	Locked     bool
	MergeID    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildBranchCreatedEvent constructs the event for a newly registered branch.
func BuildBranchCreatedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchCreated, input)
}

// BuildBranchDeletedEvent constructs the event for a removed branch.
func BuildBranchDeletedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchDeleted, input)
}

// BuildBranchSelectedEvent constructs the event for a change of active branch.
func BuildBranchSelectedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchSelected, input)
}

// BuildBranchCopiedEvent constructs the event for a copied branch.
func BuildBranchCopiedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchCopied, input)
}

// BuildBranchRenamedEvent constructs the event for a renamed branch.
func BuildBranchRenamedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchRenamed, input)
}

// BuildBranchLockedEvent constructs the event for a locked branch.
func BuildBranchLockedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchLocked, input)
}

// BuildBranchUnlockedEvent constructs the event for an unlocked branch.
func BuildBranchUnlockedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchUnlocked, input)
}

// BuildBranchMergedEvent constructs the event for the branch produced by a merge.
func BuildBranchMergedEvent(input BranchEventInput) Event {
	return buildBranchEvent(VerbBranchMerged, input)
}

func buildBranchEvent(verb string, input BranchEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["entries"] = input.Entries
	metadata["cursor"] = input.Cursor
	metadata["locked"] = input.Locked
	if len(input.Sources) > 0 {
		metadata["sources"] = append([]string{}, input.Sources...)
	}
	if id := strings.TrimSpace(input.MergeID); id != "" {
		metadata["merge_id"] = id
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeBranch,
		ObjectID:   strings.TrimSpace(input.Branch),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
