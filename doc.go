// Package history provides in-memory undo/redo state history with named
// branches.
//
// A Stack keeps snapshots in order with a cursor on the current one. Append
// drops any entries the cursor had stepped back over before storing the new
// snapshot. Next and Prev move the cursor one step. Every move funnels through
// Resolve, which calls the listener's OnChange with a copy of the current
// snapshot, or OnReject when the stack is locked. Moving past either end also
// calls OnReject and leaves the stack as it was. The default OnReject returns
// ErrRejected; pass WithOnReject(IgnoreRejections[T]) to treat rejections as
// normal outcomes.
//
//	s := history.NewStack(history.WithOnChange(func(doc Doc) { render(doc) }))
//	_ = s.Append(doc)
//	_ = s.Prev()
//
// Branches holds stacks by name with one active branch. Merge combines two
// branches into a third named "a + b": entries are keyed by the second
// branch's length and combined with a shallow field union where the second
// branch wins. Both inputs are locked afterwards.
//
// Snapshots are copied with layering.Clone on the way in and out, so only
// plain data is supported: no cycles, and unexported struct fields are not
// copied.
package history
