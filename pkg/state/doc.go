// Package state defines persistence-facing contracts for saving and loading
// branch collections as checkpoints.
//
// A Store only loads and saves one history.Checkpoint for one Ref. Saver
// turns checkpoints back into *history.Branches and guards writes with an
// optimistic ETag check. The core history package stays persistence
// agnostic; real storage lives behind Store implementations supplied by the
// host application. MemoryStore is provided for tests and examples.
//
// Data flow:
//
//	Branches.Checkpoint() -> Store.Save -> Store.Load -> history.RestoreBranches
package state
