package history

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBranchNotFound indicates an operation referenced an unknown branch.
	ErrBranchNotFound = errors.New("history: branch not found")
	// ErrBranchExists indicates a branch name is already registered.
	ErrBranchExists = errors.New("history: branch already exists")
	// ErrInvalidType indicates a branch is not backed by a usable Stack.
	ErrInvalidType = errors.New("history: branch is not a history stack or does not exist")
	// ErrRejected is returned by the default OnReject hook.
	ErrRejected = errors.New("history: state does not exist, nothing has changed")
	// ErrNoActiveBranch indicates a query needed an active branch and none is selected.
	ErrNoActiveBranch = errors.New("history: no active branch")
	// ErrInvalidCursor indicates a checkpoint cursor outside its entries.
	ErrInvalidCursor = errors.New("history: cursor out of range")
	// ErrBranchNameRequired indicates an empty branch name.
	ErrBranchNameRequired = errors.New("history: branch name required")
	// ErrNoEvaluator indicates no query evaluator could be resolved.
	ErrNoEvaluator = errors.New("history: evaluator not configured")
)

// BranchError records the collection operation and branch name that failed.
type BranchError struct {
	Op     string
	Branch string
	Err    error
}

func (e *BranchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("history: %s %q: %v", e.Op, e.Branch, trimPrefix(e.Err))
}

func (e *BranchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func branchError(op, branch string, err error) error {
	if err == nil {
		return nil
	}
	return &BranchError{Op: op, Branch: branch, Err: err}
}

// RejectionError is returned when the OnReject hook fails a navigation or a
// resolve on a locked stack. Cursor and Len describe the stack after the
// operation.
type RejectionError struct {
	Op     string
	Cursor int
	Len    int
	Locked bool
	Err    error
}

func (e *RejectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("history: %s rejected cursor=%d len=%d locked=%t: %v", e.Op, e.Cursor, e.Len, e.Locked, trimPrefix(e.Err))
}

func (e *RejectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures query metadata alongside the originating error.
// Index is the entry being evaluated, or -1 for the current snapshot of an
// empty stack.
type EvaluationError struct {
	Engine string
	Expr   string
	Index  int
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("history: %s evaluator %s index=%d: %v", e.Engine, describeExpression(e.Expr), e.Index, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "history:") {
		return err
	}
	return fmt.Errorf("history: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr string, index int, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Index:  index,
		Err:    err,
	}
}

func trimPrefix(err error) string {
	if err == nil {
		return "<nil>"
	}
	return strings.TrimPrefix(err.Error(), "history: ")
}
