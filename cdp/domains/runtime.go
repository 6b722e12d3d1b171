package domains

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdprt "github.com/chromedp/cdproto/runtime"
)

// Runtime exposes the CDP Runtime domain actions the module uses.
type Runtime interface {
	Evaluate(ctx context.Context, expression string) (json.RawMessage, error)
	EvaluateString(ctx context.Context, expression string) (string, error)
}

var _ Runtime = &runtime{}

type runtime struct {
	exec cdp.Executor
}

// NewRuntime returns a new CDP Runtime domain wrapper.
func NewRuntime(exec cdp.Executor) Runtime {
	return &runtime{exec}
}

// Evaluate runs the expression in the page and returns the JSON encoded
// result value.
func (r *runtime) Evaluate(ctx context.Context, expression string) (json.RawMessage, error) {
	action := cdprt.Evaluate(expression).WithReturnByValue(true)
	obj, exc, err := action.Do(cdp.WithExecutor(ctx, r.exec))
	if err != nil {
		return nil, fmt.Errorf("evaluating expression: %w", err)
	}
	if exc != nil {
		return nil, fmt.Errorf("expression threw: %s", exc.Text)
	}
	if obj == nil {
		return nil, nil
	}
	return json.RawMessage(obj.Value), nil
}

// EvaluateString runs the expression and decodes its result as a string.
func (r *runtime) EvaluateString(ctx context.Context, expression string) (string, error) {
	raw, err := r.Evaluate(ctx, expression)
	if err != nil {
		return "", err
	}
	var s string
	if len(raw) == 0 {
		return "", nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expression result is not a string: %w", err)
	}
	return s, nil
}
