//go:build !js_eval

package history

// NewJSEvaluator returns nil without the js_eval build tag. Stacks configured
// with a nil evaluator fall back to expr.
func NewJSEvaluator(...EvaluatorOption) Evaluator {
	return nil
}
