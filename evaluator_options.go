package history

import "fmt"

// EvaluatorOption configures a query engine. The expr, CEL and JS evaluators
// accept the same options.
type EvaluatorOption func(*engineConfig)

// engineConfig is embedded by every built-in evaluator.
type engineConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// EvaluatorProgramCache stores compiled programs in cache keyed by expression.
// A CEL program is bound to the top-level keys of the snapshot it was first
// compiled against, so one cache should only serve snapshots of one shape.
func EvaluatorProgramCache(cache ProgramCache) EvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// EvaluatorFunctions exposes a copy of registry to queries, by name and
// through call(name, [args]).
func EvaluatorFunctions(registry *FunctionRegistry) EvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.registry = registry.Clone()
	}
}

func newEngineConfig(opts []EvaluatorOption) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg engineConfig) cached(expression string) (any, bool) {
	if cfg.cache == nil {
		return nil, false
	}
	return cfg.cache.Get(expression)
}

func (cfg engineConfig) store(expression string, program any) {
	if cfg.cache != nil {
		cfg.cache.Set(expression, program)
	}
}

// call dispatches call(name, [args]) from any engine.
func (cfg engineConfig) call(name any, args []any) (any, error) {
	if cfg.registry == nil {
		return nil, fmt.Errorf("history: no query functions configured")
	}
	fn, ok := name.(string)
	if !ok {
		return nil, fmt.Errorf("history: call name must be string, got %T", name)
	}
	return cfg.registry.Call(fn, args...)
}
