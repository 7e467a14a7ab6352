package history

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Function is a callable exposed to query expressions.
type Function func(args ...any) (any, error)

// reservedNames are query bindings a function may not shadow.
var reservedNames = []string{"args", "call", "index", "metadata", "now", "state"}

type namedFunction struct {
	name string
	fn   Function
}

// FunctionRegistry holds the custom functions available to history queries.
// Lookups ignore case; queries may use the registered spelling directly.
//
// A registry attached to a Branches collection through WithBranchFunctions is
// shared by every stack the collection holds, including copies, merge results
// and restored branches.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]namedFunction
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]namedFunction{}}
}

// Register adds fn under name. Empty, reserved and duplicate names fail.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "":
		return fmt.Errorf("history: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("history: function %q is nil", name)
	case slices.Contains(reservedNames, key):
		return fmt.Errorf("history: function name %q is reserved", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]namedFunction{}
	}
	if existing, ok := r.functions[key]; ok {
		return fmt.Errorf("history: function %q already registered as %q", name, existing.name)
	}
	r.functions[key] = namedFunction{name: strings.TrimSpace(name), fn: fn}
	return nil
}

// Include copies the functions of other that r does not already define and
// reports how many were added.
func (r *FunctionRegistry) Include(other *FunctionRegistry) int {
	if r == nil || other == nil || r == other {
		return 0
	}
	other.mu.RLock()
	incoming := make(map[string]namedFunction, len(other.functions))
	for key, entry := range other.functions {
		incoming[key] = entry
	}
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]namedFunction{}
	}
	added := 0
	for key, entry := range incoming {
		if _, ok := r.functions[key]; ok {
			continue
		}
		r.functions[key] = entry
		added++
	}
	return added
}

// Clone returns an independent copy. Cloning nil returns nil.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	clone := NewFunctionRegistry()
	clone.Include(r)
	return clone
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("history: no query functions configured")
	}
	r.mu.RLock()
	entry, ok := r.functions[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("history: function %q not registered", name)
	}
	return entry.fn(args...)
}

// Names returns the registered spellings in lexical order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for _, entry := range r.functions {
		names = append(names, entry.name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered functions.
func (r *FunctionRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.functions)
}

// WithFunctionRegistry exposes a copy of registry to the stack's queries.
func WithFunctionRegistry[T any](registry *FunctionRegistry) Option[T] {
	return func(cfg *stackConfig[T]) {
		if registry == nil {
			return
		}
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		cfg.functions.Include(registry)
	}
}

// WithCustomFunction registers fn under name for the stack's queries. A
// duplicate or reserved name is ignored.
func WithCustomFunction[T any](name string, fn Function) Option[T] {
	return func(cfg *stackConfig[T]) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// shareFunctions makes the functions of shared available to s. Functions s
// already defines keep their own implementation.
func (s *Stack[T]) shareFunctions(shared *FunctionRegistry) {
	if shared.Len() == 0 {
		return
	}
	functions := s.cfg.functions.Clone()
	if functions == nil {
		functions = NewFunctionRegistry()
	}
	if functions.Include(shared) == 0 {
		return
	}
	s.cfg.functions = functions
	s.cfg.defaultEvaluator = nil
}
