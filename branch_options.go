package history

import "github.com/goliatone/go-history/pkg/activity"

// BranchOption configures a Branches collection.
type BranchOption[T any] func(*branchesConfig[T])

type branchesConfig[T any] struct {
	logger       Logger
	onChange     func(name string, s *Stack[T]) error
	hooks        activity.Hooks
	activity     activity.Config
	stackOptions []Option[T]
	functions    *FunctionRegistry
}

func applyBranchOptions[T any](opts []BranchOption[T]) branchesConfig[T] {
	cfg := branchesConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithBranchLogger attaches a logger for collection operations. Rejected
// branch operations and failing activity hooks are logged at warn level.
func WithBranchLogger[T any](logger Logger) BranchOption[T] {
	return func(cfg *branchesConfig[T]) {
		cfg.logger = logger
	}
}

// WithBranchChange overrides the branch change notification fired by
// NewBranch and GoToBranch. The default resolves the branch. A custom
// callback is responsible for resolving the stack if it wants the stack's
// own listener to fire.
func WithBranchChange[T any](fn func(name string, s *Stack[T]) error) BranchOption[T] {
	return func(cfg *branchesConfig[T]) {
		cfg.onChange = fn
	}
}

// WithActivityHooks attaches activity hooks notified after each successful
// branch mutation. Hooks are cloned and nil entries dropped.
func WithActivityHooks[T any](hooks activity.Hooks) BranchOption[T] {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *branchesConfig[T]) {
		cfg.hooks = normalized
		cfg.activity.Enabled = len(normalized) > 0
	}
}

// WithActor stamps actor and tenant identifiers on emitted activity events.
func WithActor[T any](actorID, tenantID string) BranchOption[T] {
	return func(cfg *branchesConfig[T]) {
		cfg.activity.ActorID = actorID
		cfg.activity.TenantID = tenantID
	}
}

// WithActivityChannel overrides the activity channel, "history" by default.
func WithActivityChannel[T any](channel string) BranchOption[T] {
	return func(cfg *branchesConfig[T]) {
		cfg.activity.Channel = channel
	}
}

// WithStackOptions sets the options used for stacks the collection builds
// itself: merge results and restored checkpoints.
func WithStackOptions[T any](opts ...Option[T]) BranchOption[T] {
	return func(cfg *branchesConfig[T]) {
		cfg.stackOptions = append(cfg.stackOptions, opts...)
	}
}

// WithBranchFunctions shares the functions of registry with every branch of
// the collection. A branch keeps its own implementation of a name it already
// defines.
func WithBranchFunctions[T any](registry *FunctionRegistry) BranchOption[T] {
	return func(cfg *branchesConfig[T]) {
		if registry == nil {
			return
		}
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		cfg.functions.Include(registry)
	}
}

// WithBranchFunction shares fn under name with every branch of the
// collection. A duplicate or reserved name is ignored.
func WithBranchFunction[T any](name string, fn Function) BranchOption[T] {
	return func(cfg *branchesConfig[T]) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// ActivityHooks returns a copy of the configured hooks.
func (b *Branches[T]) ActivityHooks() activity.Hooks {
	if b == nil {
		return nil
	}
	return activity.CloneHooks(b.cfg.hooks)
}
