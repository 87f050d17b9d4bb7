package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

func (t *pgTx) CreateWorkflow(ctx context.Context, w *net.Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("postgres: marshal workflow: %w", err)
	}
	q, args, err := psql.Insert("workflows").
		Columns("id", "parent_workflow_id", "parent_task_name", "data").
		Values(string(w.ID), string(w.Parent.WorkflowID), w.Parent.TaskName, data).
		ToSql()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, q, args...)
	return err
}

func (t *pgTx) GetWorkflow(ctx context.Context, id net.ID) (*net.Workflow, error) {
	q, args, err := psql.Select("data").From("workflows").Where(sqEq("id", string(id))).ToSql()
	if err != nil {
		return nil, err
	}
	var row dataRow
	if err := pgxscan.Get(ctx, t.tx, &row, q, args...); err != nil {
		return nil, errs.NotFound("workflow", string(id))
	}
	var w net.Workflow
	if err := json.Unmarshal(row.Data, &w); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal workflow: %w", err)
	}
	return &w, nil
}

func (t *pgTx) UpdateWorkflow(ctx context.Context, w *net.Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("postgres: marshal workflow: %w", err)
	}
	q, args, err := psql.Update("workflows").
		Set("data", data).
		Set("parent_workflow_id", string(w.Parent.WorkflowID)).
		Set("parent_task_name", w.Parent.TaskName).
		Where(sqEq("id", string(w.ID))).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("workflow", string(w.ID))
	}
	return nil
}

func (t *pgTx) ListChildWorkflows(ctx context.Context, parentWorkflowID net.ID, taskName string) ([]*net.Workflow, error) {
	q, args, err := psql.Select("data").From("workflows").
		Where(sqEq("parent_workflow_id", string(parentWorkflowID))).
		Where(sqEq("parent_task_name", taskName)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.Workflow](rows)
}

func unmarshalAll[T any](rows []dataRow) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := json.Unmarshal(r.Data, &v); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal: %w", err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func sqEq(col, val string) map[string]any {
	return map[string]any{col: val}
}
