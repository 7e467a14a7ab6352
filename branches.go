package history

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-history/pkg/activity"
)

// Branches is a named collection of stacks with one optional active branch.
// The active name and the active stack are always updated together: when a
// name is selected the stack is exactly the member registered under it.
//
// A Branches value is not safe for concurrent use.
type Branches[T any] struct {
	branches   map[string]*Stack[T]
	activeName string
	active     *Stack[T]

	cfg     branchesConfig[T]
	emitter *activity.Emitter
}

// NewBranches constructs an empty collection.
func NewBranches[T any](opts ...BranchOption[T]) *Branches[T] {
	cfg := applyBranchOptions(opts)
	return &Branches[T]{
		branches: make(map[string]*Stack[T]),
		cfg:      cfg,
		emitter:  activity.NewEmitter(cfg.hooks, cfg.activity),
	}
}

// NewBranch registers s under name, selects it and fires the branch change
// notification. An existing name is reported with ErrBranchExists and the
// registered branch is left untouched.
func (b *Branches[T]) NewBranch(s *Stack[T], name string) error {
	const op = "new"
	if name == "" {
		return b.fail(op, name, ErrBranchNameRequired)
	}
	if s == nil {
		return b.fail(op, name, fmt.Errorf("%w: nil stack", ErrInvalidType))
	}
	if _, exists := b.branches[name]; exists {
		return b.fail(op, name, ErrBranchExists)
	}

	s.shareFunctions(b.cfg.functions)
	b.branches[name] = s
	b.setActive(name, s)
	b.emit(activity.BuildBranchCreatedEvent, name, s, nil, "")
	return b.notify(op, name, s)
}

// DeleteBranch removes name from the collection, clearing the active
// selection when it pointed at name. Unknown names are ignored.
func (b *Branches[T]) DeleteBranch(name string) {
	s, ok := b.branches[name]
	if !ok {
		return
	}
	delete(b.branches, name)
	if b.activeName == name {
		b.setActive("", nil)
	}
	b.log("delete", name, nil)
	b.emit(activity.BuildBranchDeletedEvent, name, s, nil, "")
}

// GoToBranch selects name and fires the branch change notification.
func (b *Branches[T]) GoToBranch(name string) error {
	const op = "goto"
	s, ok := b.branches[name]
	if !ok {
		return b.fail(op, name, ErrBranchNotFound)
	}
	b.setActive(name, s)
	b.emit(activity.BuildBranchSelectedEvent, name, s, nil, "")
	return b.notify(op, name, s)
}

// CopyBranch registers an independent deep copy of oldName under newName.
// The active selection does not change.
func (b *Branches[T]) CopyBranch(oldName, newName string) error {
	const op = "copy"
	if newName == "" {
		return b.fail(op, oldName, ErrBranchNameRequired)
	}
	s, err := b.lookup(op, oldName)
	if err != nil {
		return err
	}
	if _, exists := b.branches[newName]; exists {
		return b.fail(op, newName, ErrBranchExists)
	}

	copied := s.Clone()
	copied.shareFunctions(b.cfg.functions)
	b.branches[newName] = copied
	b.log(op, newName, nil)
	b.emit(activity.BuildBranchCopiedEvent, newName, copied, []string{oldName}, "")
	return nil
}

// RenameBranch moves oldName to newName and follows the active selection.
// Renaming a branch to its own name does nothing.
func (b *Branches[T]) RenameBranch(oldName, newName string) error {
	const op = "rename"
	if newName == "" {
		return b.fail(op, oldName, ErrBranchNameRequired)
	}
	s, err := b.lookup(op, oldName)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if _, exists := b.branches[newName]; exists {
		return b.fail(op, newName, ErrBranchExists)
	}

	delete(b.branches, oldName)
	b.branches[newName] = s
	if b.activeName == oldName {
		b.setActive(newName, s)
	}
	b.log(op, newName, nil)
	b.emit(activity.BuildBranchRenamedEvent, newName, s, []string{oldName}, "")
	return nil
}

// LockBranch marks name read-only: later resolves on it are rejected.
func (b *Branches[T]) LockBranch(name string) error {
	s, err := b.lookup("lock", name)
	if err != nil {
		return err
	}
	s.Lock()
	b.log("lock", name, nil)
	b.emit(activity.BuildBranchLockedEvent, name, s, nil, "")
	return nil
}

// UnlockBranch clears the lock flag on name.
func (b *Branches[T]) UnlockBranch(name string) error {
	s, err := b.lookup("unlock", name)
	if err != nil {
		return err
	}
	s.Unlock()
	b.log("unlock", name, nil)
	b.emit(activity.BuildBranchUnlockedEvent, name, s, nil, "")
	return nil
}

// RegisterFunction adds fn to the functions shared by the collection and
// makes it available to every branch already registered.
func (b *Branches[T]) RegisterFunction(name string, fn Function) error {
	if b.cfg.functions == nil {
		b.cfg.functions = NewFunctionRegistry()
	}
	if err := b.cfg.functions.Register(name, fn); err != nil {
		return b.fail("function", name, err)
	}
	for _, s := range b.branches {
		s.shareFunctions(b.cfg.functions)
	}
	return nil
}

// Functions returns a copy of the functions shared by the collection.
func (b *Branches[T]) Functions() *FunctionRegistry {
	return b.cfg.functions.Clone()
}

// Len returns the number of branches.
func (b *Branches[T]) Len() int {
	return len(b.branches)
}

// Names returns the branch names in lexical order.
func (b *Branches[T]) Names() []string {
	return slices.Sorted(maps.Keys(b.branches))
}

// Branch returns the stack registered under name.
func (b *Branches[T]) Branch(name string) (*Stack[T], bool) {
	s, ok := b.branches[name]
	return s, ok
}

// Active returns the selected stack, nil when nothing is selected.
func (b *Branches[T]) Active() *Stack[T] {
	return b.active
}

// ActiveName returns the selected branch name, empty when nothing is selected.
func (b *Branches[T]) ActiveName() string {
	return b.activeName
}

// IsActiveLocked reports whether the selected branch is locked. It returns
// ErrNoActiveBranch when nothing is selected.
func (b *Branches[T]) IsActiveLocked() (bool, error) {
	if b.active == nil {
		return false, ErrNoActiveBranch
	}
	return b.active.Locked(), nil
}

func (b *Branches[T]) setActive(name string, s *Stack[T]) {
	b.activeName = name
	b.active = s
}

func (b *Branches[T]) lookup(op, name string) (*Stack[T], error) {
	s, ok := b.branches[name]
	if !ok {
		return nil, b.fail(op, name, ErrBranchNotFound)
	}
	return s, nil
}

// notify fires the branch change notification for a selected branch.
func (b *Branches[T]) notify(op, name string, s *Stack[T]) error {
	if s == nil {
		return b.fail(op, name, fmt.Errorf("%w: branch %q has no stack", ErrInvalidType, name))
	}
	var err error
	if b.cfg.onChange != nil {
		err = b.cfg.onChange(name, s)
	} else {
		err = s.Resolve()
	}
	if err != nil {
		return b.fail(op, name, err)
	}
	b.log(op, name, nil)
	return nil
}

func (b *Branches[T]) fail(op, name string, err error) error {
	err = branchError(op, name, err)
	b.log(op, name, err)
	return err
}

func (b *Branches[T]) log(op, name string, err error) {
	cursor := -1
	if s, ok := b.branches[name]; ok && s != nil {
		cursor = s.Cursor()
	}
	loggerOrNoop(b.cfg.logger).Log(LogEvent{
		Op:     op,
		Branch: name,
		Cursor: cursor,
		Err:    err,
	})
}

func (b *Branches[T]) emit(build func(activity.BranchEventInput) activity.Event, name string, s *Stack[T], sources []string, mergeID string) {
	if !b.emitter.Enabled() {
		return
	}
	input := activity.BranchEventInput{
		Branch:  name,
		Sources: sources,
		Cursor:  -1,
		MergeID: mergeID,
	}
	if s != nil {
		input.Entries = s.Len()
		input.Cursor = s.Cursor()
		input.Locked = s.Locked()
	}
	if err := b.emitter.Emit(context.Background(), build(input)); err != nil {
		b.log("activity", name, err)
	}
}

// Checkpoint is a detached export of a collection.
type Checkpoint[T any] struct {
	Active   string                        `json:"active,omitempty"`
	Branches map[string]StackCheckpoint[T] `json:"branches"`
}

// Checkpoint exports deep copies of every branch and the active name.
func (b *Branches[T]) Checkpoint() Checkpoint[T] {
	cp := Checkpoint[T]{
		Active:   b.activeName,
		Branches: make(map[string]StackCheckpoint[T], len(b.branches)),
	}
	for name, s := range b.branches {
		cp.Branches[name] = s.Checkpoint()
	}
	return cp
}

// RestoreBranches rebuilds a collection from a checkpoint. Restored stacks
// use the options given through WithStackOptions. No notification or
// activity event is fired.
func RestoreBranches[T any](cp Checkpoint[T], opts ...BranchOption[T]) (*Branches[T], error) {
	if cp.Active != "" {
		if _, ok := cp.Branches[cp.Active]; !ok {
			return nil, branchError("restore", cp.Active, ErrBranchNotFound)
		}
	}
	b := NewBranches(opts...)
	for name, stackCp := range cp.Branches {
		if name == "" {
			return nil, branchError("restore", name, ErrBranchNameRequired)
		}
		s, err := RestoreStack(stackCp, b.cfg.stackOptions...)
		if err != nil {
			return nil, branchError("restore", name, err)
		}
		s.shareFunctions(b.cfg.functions)
		b.branches[name] = s
	}
	if cp.Active != "" {
		b.setActive(cp.Active, b.branches[cp.Active])
	}
	return b, nil
}
