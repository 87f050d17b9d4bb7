package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

func (t *pgTx) CreateTask(ctx context.Context, task *net.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("postgres: marshal task: %w", err)
	}
	q, args, err := psql.Insert("tasks").
		Columns("id", "workflow_id", "name", "data").
		Values(string(task.ID), string(task.WorkflowID), task.Name, data).
		ToSql()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, q, args...)
	return err
}

func (t *pgTx) GetTask(ctx context.Context, id net.ID) (*net.Task, error) {
	q, args, err := psql.Select("data").From("tasks").Where(sqEq("id", string(id))).ToSql()
	if err != nil {
		return nil, err
	}
	var row dataRow
	if err := pgxscan.Get(ctx, t.tx, &row, q, args...); err != nil {
		return nil, errs.NotFound("task", string(id))
	}
	var task net.Task
	if err := json.Unmarshal(row.Data, &task); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal task: %w", err)
	}
	return &task, nil
}

func (t *pgTx) GetTaskByName(ctx context.Context, workflowID net.ID, name string) (*net.Task, error) {
	q, args, err := psql.Select("data").From("tasks").
		Where(sqEq("workflow_id", string(workflowID))).
		Where(sqEq("name", name)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var row dataRow
	if err := pgxscan.Get(ctx, t.tx, &row, q, args...); err != nil {
		return nil, errs.NotFound("task", name)
	}
	var task net.Task
	if err := json.Unmarshal(row.Data, &task); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal task: %w", err)
	}
	return &task, nil
}

func (t *pgTx) ListTasksByWorkflow(ctx context.Context, workflowID net.ID) ([]*net.Task, error) {
	q, args, err := psql.Select("data").From("tasks").Where(sqEq("workflow_id", string(workflowID))).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.Task](rows)
}

func (t *pgTx) UpdateTask(ctx context.Context, task *net.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("postgres: marshal task: %w", err)
	}
	q, args, err := psql.Update("tasks").Set("data", data).Where(sqEq("id", string(task.ID))).ToSql()
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("task", string(task.ID))
	}
	return nil
}
