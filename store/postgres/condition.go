package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

func (t *pgTx) CreateCondition(ctx context.Context, c *net.Condition) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("postgres: marshal condition: %w", err)
	}
	q, args, err := psql.Insert("conditions").
		Columns("id", "workflow_id", "data").
		Values(string(c.ID), string(c.WorkflowID), data).
		ToSql()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, q, args...)
	return err
}

func (t *pgTx) GetCondition(ctx context.Context, id net.ID) (*net.Condition, error) {
	q, args, err := psql.Select("data").From("conditions").Where(sqEq("id", string(id))).ToSql()
	if err != nil {
		return nil, err
	}
	var row dataRow
	if err := pgxscan.Get(ctx, t.tx, &row, q, args...); err != nil {
		return nil, errs.NotFound("condition", string(id))
	}
	var c net.Condition
	if err := json.Unmarshal(row.Data, &c); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal condition: %w", err)
	}
	return &c, nil
}

func (t *pgTx) ListConditionsByWorkflow(ctx context.Context, workflowID net.ID) ([]*net.Condition, error) {
	q, args, err := psql.Select("data").From("conditions").Where(sqEq("workflow_id", string(workflowID))).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.Condition](rows)
}

// adjustMarking applies delta to the condition's marking inside the data
// blob and persists it (a read followed by a separate update), refusing a
// negative result.
func (t *pgTx) adjustMarking(ctx context.Context, id net.ID, delta int32, reset bool) (*net.Condition, error) {
	c, err := t.GetCondition(ctx, id)
	if err != nil {
		return nil, err
	}
	if reset {
		c.Marking = 0
	} else {
		next := c.Marking + delta
		if next < 0 {
			return nil, errs.New(errs.CodeStructuralIntegrity,
				fmt.Errorf("condition %s marking would go negative (have %d, delta %d)", id, c.Marking, delta),
				map[string]any{"condition": string(id), "marking": c.Marking, "delta": delta},
			)
		}
		c.Marking = next
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("postgres: marshal condition: %w", err)
	}
	q, args, err := psql.Update("conditions").Set("data", data).Where(sqEq("id", string(id))).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.Exec(ctx, q, args...); err != nil {
		return nil, err
	}
	return c, nil
}

func (t *pgTx) ProduceTokens(ctx context.Context, id net.ID, n int32) (*net.Condition, error) {
	if n < 0 {
		return nil, errs.New(errs.CodeStructuralIntegrity, fmt.Errorf("produce negative tokens %d", n), nil)
	}
	return t.adjustMarking(ctx, id, n, false)
}

func (t *pgTx) ConsumeTokens(ctx context.Context, id net.ID, n int32) (*net.Condition, error) {
	if n < 0 {
		return nil, errs.New(errs.CodeStructuralIntegrity, fmt.Errorf("consume negative tokens %d", n), nil)
	}
	return t.adjustMarking(ctx, id, -n, false)
}

func (t *pgTx) ResetMarking(ctx context.Context, id net.ID) (*net.Condition, error) {
	return t.adjustMarking(ctx, id, 0, true)
}
