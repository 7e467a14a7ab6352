package history

// Listener receives the notifications a Stack fires from Resolve, Next, Prev
// and Clear.
type Listener[T any] interface {
	// OnChange is called with the new current snapshot after a successful
	// append or navigation.
	OnChange(state T)
	// OnReject is called with the unchanged current snapshot when navigation
	// has nowhere to go or when the stack is locked. A non-nil error is
	// returned to the caller of the operation.
	OnReject(state T) error
	// OnClear is called after the stack has been emptied.
	OnClear()
}

// ListenerFuncs adapts plain functions to Listener. Nil fields fall back to
// the defaults: OnChange and OnClear do nothing, OnReject returns ErrRejected.
type ListenerFuncs[T any] struct {
	Change func(state T)
	Reject func(state T) error
	Clear  func()
}

// OnChange implements Listener.
func (l ListenerFuncs[T]) OnChange(state T) {
	if l.Change != nil {
		l.Change(state)
	}
}

// OnReject implements Listener.
func (l ListenerFuncs[T]) OnReject(state T) error {
	if l.Reject != nil {
		return l.Reject(state)
	}
	return ErrRejected
}

// OnClear implements Listener.
func (l ListenerFuncs[T]) OnClear() {
	if l.Clear != nil {
		l.Clear()
	}
}

// IgnoreRejections is an OnReject handler that swallows rejections.
func IgnoreRejections[T any](T) error {
	return nil
}

// Option configures a Stack.
type Option[T any] func(*stackConfig[T])

type stackConfig[T any] struct {
	listener     ListenerFuncs[T]
	logger       Logger
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry

	// defaultEvaluator is built lazily when evaluator is nil.
	defaultEvaluator Evaluator
}

func applyOptions[T any](opts []Option[T]) stackConfig[T] {
	cfg := stackConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg stackConfig[T]) clone() stackConfig[T] {
	out := cfg
	out.functions = cfg.functions.Clone()
	return out
}

// WithListener routes all three notifications to listener.
func WithListener[T any](listener Listener[T]) Option[T] {
	return func(cfg *stackConfig[T]) {
		if listener == nil {
			return
		}
		cfg.listener = ListenerFuncs[T]{
			Change: listener.OnChange,
			Reject: listener.OnReject,
			Clear:  listener.OnClear,
		}
	}
}

// WithOnChange sets the change notification.
func WithOnChange[T any](fn func(state T)) Option[T] {
	return func(cfg *stackConfig[T]) {
		cfg.listener.Change = fn
	}
}

// WithOnReject overrides the rejection handler. Passing IgnoreRejections turns
// rejections into silent no-ops.
func WithOnReject[T any](fn func(state T) error) Option[T] {
	return func(cfg *stackConfig[T]) {
		cfg.listener.Reject = fn
	}
}

// WithOnClear sets the clear notification.
func WithOnClear[T any](fn func()) Option[T] {
	return func(cfg *stackConfig[T]) {
		cfg.listener.Clear = fn
	}
}

// WithLogger attaches a logger used for query evaluations.
func WithLogger[T any](logger Logger) Option[T] {
	return func(cfg *stackConfig[T]) {
		cfg.logger = logger
	}
}

// WithEvaluator configures the query evaluator. A nil evaluator keeps the
// default expr engine.
func WithEvaluator[T any](e Evaluator) Option[T] {
	return func(cfg *stackConfig[T]) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a program cache used by the default evaluator.
func WithProgramCache[T any](cache ProgramCache) Option[T] {
	return func(cfg *stackConfig[T]) {
		cfg.programCache = cache
	}
}
