// Package firing implements the enablement and firing engine: task
// enablement recomputation, AND/XOR/OR join and split semantics, router
// expression evaluation, and the work-item state machine. Every exported
// function takes a *ctxrun.Context and mutates through its transaction;
// nothing in this package talks to a store directly.
package firing

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/yawlrun/yawlrun/errs"
)

// Router compiles and evaluates the CEL expression on a task's
// RouterExpr field against the payload of the work item driving an
// XOR or OR split, resolving it to the names of output conditions to
// produce tokens into.
type Router struct {
	env *cel.Env
}

// NewRouter builds a Router with a CEL environment that exposes the
// work item's payload under the `payload` variable and its aggregate id
// under `aggregateId`.
func NewRouter() (*Router, error) {
	env, err := cel.NewEnv(
		cel.Variable("payload", cel.DynType),
		cel.Variable("aggregateId", cel.StringType),
	)
	if err != nil {
		return nil, errs.New(errs.CodeConfiguration, err, nil)
	}
	return &Router{env: env}, nil
}

// EvalNames evaluates expr, which must produce a string or a list of
// strings, naming the output condition(s) chosen for an XOR or OR split.
func (r *Router) EvalNames(expr string, payload map[string]any, aggregateID string) ([]string, error) {
	ast, issues := r.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errs.New(errs.CodeConfiguration, issues.Err(), map[string]any{"expr": expr})
	}
	prg, err := r.env.Program(ast)
	if err != nil {
		return nil, errs.New(errs.CodeConfiguration, err, map[string]any{"expr": expr})
	}
	out, _, err := prg.Eval(map[string]any{
		"payload":     anyPayload(payload),
		"aggregateId": aggregateID,
	})
	if err != nil {
		return nil, errs.New(errs.CodeConfiguration, err, map[string]any{"expr": expr})
	}
	switch v := out.Value().(type) {
	case string:
		return []string{v}, nil
	case []any:
		names := make([]string, 0, len(v))
		for _, e := range v {
			names = append(names, fmt.Sprintf("%v", e))
		}
		return names, nil
	default:
		return nil, errs.New(errs.CodeConfiguration, nil,
			map[string]any{"expr": expr, "reason": "router expression did not evaluate to a string or list of strings"})
	}
}

func anyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}
