package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/yawlrun/yawlrun/net"
)

func (t *pgTx) CreateFlowEdge(ctx context.Context, e *net.FlowEdge) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("postgres: marshal flow edge: %w", err)
	}
	q, args, err := psql.Insert("flow_edges").
		Columns("id", "workflow_id", "kind", "from_id", "to_id", "data").
		Values(string(e.ID), string(e.WorkflowID), string(e.Kind), string(e.FromID), string(e.ToID), data).
		ToSql()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, q, args...)
	return err
}

func (t *pgTx) InputsOf(ctx context.Context, taskID net.ID) ([]*net.FlowEdge, error) {
	return t.edgesWhere(ctx, string(net.FlowConditionToTask), "to_id", string(taskID))
}

func (t *pgTx) OutputsOf(ctx context.Context, taskID net.ID) ([]*net.FlowEdge, error) {
	return t.edgesWhere(ctx, string(net.FlowTaskToCondition), "from_id", string(taskID))
}

func (t *pgTx) edgesWhere(ctx context.Context, kind, col, id string) ([]*net.FlowEdge, error) {
	q, args, err := psql.Select("data").From("flow_edges").
		Where(sqEq("kind", kind)).
		Where(sqEq(col, id)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.FlowEdge](rows)
}

func (t *pgTx) DownstreamTasksOf(ctx context.Context, conditionID net.ID) ([]*net.Task, error) {
	return t.tasksViaEdges(ctx, string(net.FlowConditionToTask), "from_id", string(conditionID), "to_id")
}

func (t *pgTx) UpstreamTasksOf(ctx context.Context, conditionID net.ID) ([]*net.Task, error) {
	return t.tasksViaEdges(ctx, string(net.FlowTaskToCondition), "to_id", string(conditionID), "from_id")
}

// tasksViaEdges joins flow_edges to tasks in one query: edgeCol/edgeVal
// picks the edges, taskCol names which edge endpoint holds the task id.
func (t *pgTx) tasksViaEdges(ctx context.Context, kind, edgeCol, edgeVal, taskCol string) ([]*net.Task, error) {
	q, args, err := psql.Select("tasks.data").
		From("flow_edges").
		Join(fmt.Sprintf("tasks ON tasks.id = flow_edges.%s", taskCol)).
		Where(sqEq("flow_edges.kind", kind)).
		Where(sqEq("flow_edges."+edgeCol, edgeVal)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.Task](rows)
}
