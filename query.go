package history

import (
	"fmt"
	"time"

	"github.com/goliatone/go-history/layering"
)

// Evaluate runs expr against the current snapshot.
func (s *Stack[T]) Evaluate(expr string) (any, error) {
	return s.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr using ctx, filling Snapshot and Index from the
// cursor when ctx.Snapshot is nil.
func (s *Stack[T]) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("history: expression must not be empty")
	}
	evaluator, err := s.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = s.current()
		ctx.Index = s.cursor
	}
	ctx = ctx.withDefaults()

	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	evalErr = wrapEvaluationError(evaluatorEngineName(evaluator), expr, ctx.Index, evalErr)
	s.logEvaluation("evaluate", evaluator, expr, time.Since(start), evalErr)
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// Find returns the indices of every entry for which expr evaluates to true,
// in chronological order.
func (s *Stack[T]) Find(expr string) ([]int, error) {
	if expr == "" {
		return nil, fmt.Errorf("history: expression must not be empty")
	}
	evaluator, err := s.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	engine := evaluatorEngineName(evaluator)

	start := time.Now()
	matches, findErr := s.find(evaluator, expr)
	findErr = wrapEvaluationError(engine, expr, -1, findErr)
	s.logEvaluation("find", evaluator, expr, time.Since(start), findErr)
	if findErr != nil {
		return nil, findErr
	}
	return matches, nil
}

func (s *Stack[T]) find(evaluator Evaluator, expr string) ([]int, error) {
	rule, err := evaluator.Compile(expr)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var matches []int
	for i := range s.entries {
		ctx := RuleContext{
			Snapshot: layering.Clone(s.entries[i]),
			Index:    i,
			Now:      &now,
		}
		value, err := rule.Evaluate(ctx.withDefaultMaps())
		if err != nil {
			return nil, err
		}
		if matched, ok := value.(bool); ok && matched {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// Seek moves the cursor to the most recent entry matching expr and resolves.
// When nothing matches the stack is left untouched and the rejection handler
// is called, as for Next at the last entry.
func (s *Stack[T]) Seek(expr string) error {
	matches, err := s.Find(expr)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return s.reject("seek")
	}
	s.cursor = matches[len(matches)-1]
	return s.resolve("seek")
}

func (s *Stack[T]) resolveEvaluator() (Evaluator, error) {
	if s.cfg.evaluator != nil {
		return s.cfg.evaluator, nil
	}
	if s.cfg.defaultEvaluator != nil {
		return s.cfg.defaultEvaluator, nil
	}
	evaluator := NewExprEvaluator(
		EvaluatorProgramCache(s.cfg.programCache),
		EvaluatorFunctions(s.cfg.functions),
	)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	s.cfg.defaultEvaluator = evaluator
	return evaluator, nil
}

func (s *Stack[T]) logEvaluation(op string, evaluator Evaluator, expr string, duration time.Duration, err error) {
	loggerOrNoop(s.cfg.logger).Log(LogEvent{
		Op:       op,
		Cursor:   s.cursor,
		Engine:   evaluatorEngineName(evaluator),
		Expr:     expr,
		Duration: duration,
		Err:      err,
	})
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name := fmt.Sprintf("%T", e); name == "*history.jsEvaluator" {
			return "js"
		}
		return "custom"
	}
}
