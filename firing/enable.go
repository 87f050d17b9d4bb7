package firing

import (
	"context"

	"github.com/yawlrun/yawlrun/net"
)

// inputConditions returns the Conditions feeding t, following its input
// FlowEdges.
func inputConditions(ctx context.Context, tx txReader, t *net.Task) ([]*net.Condition, error) {
	edges, err := tx.InputsOf(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	conds := make([]*net.Condition, 0, len(edges))
	for _, e := range edges {
		c, err := tx.GetCondition(ctx, e.FromID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// outputConditions returns the Conditions t produces into, following its
// output FlowEdges.
func outputConditions(ctx context.Context, tx txReader, t *net.Task) ([]*net.Condition, error) {
	edges, err := tx.OutputsOf(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	conds := make([]*net.Condition, 0, len(edges))
	for _, e := range edges {
		c, err := tx.GetCondition(ctx, e.ToID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// isEnabled evaluates t's join semantics against the current marking of
// its input conditions: AND requires every input marked >=1, XOR requires
// at least one. OR is handled separately by orJoinReady, since it depends
// on upstream task state, not just the current marking.
func isEnabled(conds []*net.Condition, join net.JoinType) bool {
	switch join {
	case net.JoinAND:
		if len(conds) == 0 {
			return false
		}
		for _, c := range conds {
			if c.Marking < 1 {
				return false
			}
		}
		return true
	case net.JoinXOR:
		for _, c := range conds {
			if c.Marking >= 1 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// RecomputeEnablement reevaluates task t's join condition against its
// current input marking and transitions it between disabled and enabled.
// It is idempotent and safe to call after any token production or
// consumption touching t's inputs.
func RecomputeEnablement(ctx context.Context, tx txReader, updater txUpdater, t *net.Task) error {
	if t.State != net.TaskDisabled && t.State != net.TaskEnabled {
		return nil
	}
	conds, err := inputConditions(ctx, tx, t)
	if err != nil {
		return err
	}
	var enabled bool
	if t.JoinType == net.JoinOR {
		enabled, err = orJoinReady(ctx, tx, conds)
		if err != nil {
			return err
		}
	} else {
		enabled = isEnabled(conds, t.JoinType)
	}
	switch {
	case enabled && t.State == net.TaskDisabled:
		t.State = net.TaskEnabled
		return updater.UpdateTask(ctx, t)
	case !enabled && t.State == net.TaskEnabled:
		t.State = net.TaskDisabled
		return updater.UpdateTask(ctx, t)
	default:
		return nil
	}
}

// RecomputeDownstream recomputes enablement for every task downstream of
// condition id, called after a token is produced into or consumed from it.
func RecomputeDownstream(ctx context.Context, tx txReader, updater txUpdater, conditionID net.ID) error {
	tasks, err := tx.DownstreamTasksOf(ctx, conditionID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := RecomputeEnablement(ctx, tx, updater, t); err != nil {
			return err
		}
	}
	return nil
}

// txReader is the subset of marking.Tx this package needs for reads.
type txReader interface {
	GetCondition(ctx context.Context, id net.ID) (*net.Condition, error)
	InputsOf(ctx context.Context, taskID net.ID) ([]*net.FlowEdge, error)
	OutputsOf(ctx context.Context, taskID net.ID) ([]*net.FlowEdge, error)
	DownstreamTasksOf(ctx context.Context, conditionID net.ID) ([]*net.Task, error)
	UpstreamTasksOf(ctx context.Context, conditionID net.ID) ([]*net.Task, error)
}

// txUpdater is the subset of marking.Tx this package needs for writes to
// task state (token production/consumption is done directly against
// marking.Tx by the caller, since it must interleave with enablement
// recomputation one condition at a time).
type txUpdater interface {
	UpdateTask(ctx context.Context, t *net.Task) error
}
