package firing

import (
	"time"

	"github.com/yawlrun/yawlrun/audit"
	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

// Fire consumes tokens from t's input conditions per its join type,
// transitions t to started, and instantiates the WorkItem(s) its template
// describes. AND consumes one token from every input; XOR consumes one
// token from the first marked input; OR consumes one token from every
// currently marked input (so OR may consume from more than one condition
// in the same firing, matching its witness semantics).
func Fire(rc *ctxrun.Context, t *net.Task) (*net.WorkItem, error) {
	if t.State != net.TaskEnabled {
		return nil, errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"task": t.Name, "from": string(t.State), "to": "started"})
	}
	close := rc.OpenSpan("fire:"+t.Name, map[string]any{"taskId": t.ID.String()})
	defer close()
	ctx := rc.GoContext()
	tx := rc.Tx()

	conds, err := inputConditions(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	switch t.JoinType {
	case net.JoinAND:
		for _, c := range conds {
			if _, err := tx.ConsumeTokens(ctx, c.ID, 1); err != nil {
				return nil, err
			}
		}
	case net.JoinXOR, net.JoinOR:
		consumed := false
		for _, c := range conds {
			if c.Marking < 1 {
				continue
			}
			if _, err := tx.ConsumeTokens(ctx, c.ID, 1); err != nil {
				return nil, err
			}
			consumed = true
			if t.JoinType == net.JoinXOR {
				break
			}
		}
		if !consumed {
			return nil, errs.New(errs.CodeStructuralIntegrity, nil,
				map[string]any{"task": t.Name, "reason": "fire called with no marked input condition"})
		}
	}

	t.State = net.TaskStarted
	if err := tx.UpdateTask(ctx, t); err != nil {
		return nil, err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind:        audit.KeyEventFire,
		ElementKind: audit.ElementTask,
		ElementID:   t.ID,
		WorkflowID:  t.WorkflowID,
		TaskName:    t.Name,
		State:       string(t.State),
	})

	if t.WorkItemTemplate == nil {
		return nil, nil
	}
	wi := &net.WorkItem{
		ID:          net.MustNewID(),
		TaskID:      t.ID,
		WorkflowID:  t.WorkflowID,
		State:       net.WorkItemInitialized,
		Offer:       t.WorkItemTemplate.DefaultOffer,
		AutoTrigger: t.WorkItemTemplate.AutoTrigger,
		CreatedAt:   time.Now(),
	}
	if err := tx.CreateWorkItem(ctx, wi); err != nil {
		return nil, err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind:        audit.KeyEventCreate,
		ElementKind: audit.ElementWorkItem,
		ElementID:   wi.ID,
		WorkflowID:  wi.WorkflowID,
		TaskName:    t.Name,
		State:       string(wi.State),
	})
	return wi, nil
}

// CompleteTask produces tokens into t's output conditions per its split
// type and transitions t to completed, then recomputes enablement for
// every downstream task so the next Fire can proceed. For XOR and OR
// splits, router evaluates t's RouterExpr against payload to choose which
// outputs receive a token.
func CompleteTask(rc *ctxrun.Context, t *net.Task, router *Router, payload map[string]any, aggregateID string) error {
	if t.State != net.TaskStarted {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"task": t.Name, "from": string(t.State), "to": "completed"})
	}
	close := rc.OpenSpan("complete:"+t.Name, map[string]any{"taskId": t.ID.String()})
	defer close()
	ctx := rc.GoContext()
	tx := rc.Tx()

	outs, err := outputConditions(ctx, tx, t)
	if err != nil {
		return err
	}
	chosen, err := chooseOutputs(t, router, payload, aggregateID, outs)
	if err != nil {
		return err
	}
	for _, c := range chosen {
		if _, err := tx.ProduceTokens(ctx, c.ID, 1); err != nil {
			return err
		}
	}

	t.State = net.TaskComplete
	if err := tx.UpdateTask(ctx, t); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind:        audit.KeyEventComplete,
		ElementKind: audit.ElementTask,
		ElementID:   t.ID,
		WorkflowID:  t.WorkflowID,
		TaskName:    t.Name,
		State:       string(t.State),
	})

	for _, c := range chosen {
		if err := RecomputeDownstream(ctx, tx, tx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// chooseOutputs resolves which output conditions a completing task
// deposits tokens into: AND deposits into all, XOR/OR evaluate the
// router expression against payload.
func chooseOutputs(t *net.Task, router *Router, payload map[string]any, aggregateID string, outs []*net.Condition) ([]*net.Condition, error) {
	if t.SplitType == net.SplitAND || t.RouterExpr == nil {
		return outs, nil
	}
	names, err := router.EvalNames(*t.RouterExpr, payload, aggregateID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*net.Condition, len(outs))
	for _, c := range outs {
		byName[c.Name] = c
	}
	chosen := make([]*net.Condition, 0, len(names))
	for _, n := range names {
		c, ok := byName[n]
		if !ok {
			return nil, errs.New(errs.CodeConfiguration, nil,
				map[string]any{"task": t.Name, "route": n, "reason": "router chose an output condition not connected to this task"})
		}
		chosen = append(chosen, c)
		if t.SplitType == net.SplitXOR {
			break
		}
	}
	if len(chosen) == 0 {
		return nil, errs.New(errs.CodeConfiguration, nil,
			map[string]any{"task": t.Name, "reason": "router expression chose no output condition"})
	}
	return chosen, nil
}

// FailTask transitions a started task to failed. Failed tasks produce no
// tokens; recovery is out of scope for the engine itself.
func FailTask(rc *ctxrun.Context, t *net.Task) error {
	if t.State != net.TaskStarted {
		return errs.New(errs.CodeInvalidStateTransition, nil,
			map[string]any{"task": t.Name, "from": string(t.State), "to": "failed"})
	}
	t.State = net.TaskFailed
	if err := rc.Tx().UpdateTask(rc.GoContext(), t); err != nil {
		return err
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind:        audit.KeyEventFail,
		ElementKind: audit.ElementTask,
		ElementID:   t.ID,
		WorkflowID:  t.WorkflowID,
		TaskName:    t.Name,
		State:       string(t.State),
	})
	return nil
}
