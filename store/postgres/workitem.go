package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

func aggregateIDOf(wi *net.WorkItem) string {
	if wi.AggregateID == nil {
		return ""
	}
	return *wi.AggregateID
}

func (t *pgTx) CreateWorkItem(ctx context.Context, wi *net.WorkItem) error {
	data, err := json.Marshal(wi)
	if err != nil {
		return fmt.Errorf("postgres: marshal work item: %w", err)
	}
	q, args, err := psql.Insert("work_items").
		Columns("id", "task_id", "offer_kind", "offer_scope", "offer_group", "aggregate_id", "data").
		Values(
			string(wi.ID), string(wi.TaskID), string(wi.Offer.Kind),
			wi.Offer.RequiredScope, wi.Offer.RequiredGroup, aggregateIDOf(wi), data,
		).
		ToSql()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, q, args...)
	return err
}

func (t *pgTx) GetWorkItem(ctx context.Context, id net.ID) (*net.WorkItem, error) {
	q, args, err := psql.Select("data").From("work_items").Where(sqEq("id", string(id))).ToSql()
	if err != nil {
		return nil, err
	}
	var row dataRow
	if err := pgxscan.Get(ctx, t.tx, &row, q, args...); err != nil {
		return nil, errs.NotFound("workItem", string(id))
	}
	var wi net.WorkItem
	if err := json.Unmarshal(row.Data, &wi); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal work item: %w", err)
	}
	return &wi, nil
}

func (t *pgTx) ListWorkItemsByTask(ctx context.Context, taskID net.ID) ([]*net.WorkItem, error) {
	q, args, err := psql.Select("data").From("work_items").Where(sqEq("task_id", string(taskID))).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.WorkItem](rows)
}

func (t *pgTx) ListWorkItemsByOffer(ctx context.Context, scope, groupID string) ([]*net.WorkItem, error) {
	builder := psql.Select("data").From("work_items").Where(sqEq("offer_kind", string(net.OfferHuman)))
	if scope != "" {
		builder = builder.Where(sqEq("offer_scope", scope))
	}
	if groupID != "" {
		builder = builder.Where(sqEq("offer_group", groupID))
	}
	q, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.WorkItem](rows)
}

func (t *pgTx) ListWorkItemsByAggregate(ctx context.Context, aggregateID string) ([]*net.WorkItem, error) {
	q, args, err := psql.Select("data").From("work_items").Where(sqEq("aggregate_id", aggregateID)).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []dataRow
	if err := pgxscan.Select(ctx, t.tx, &rows, q, args...); err != nil {
		return nil, err
	}
	return unmarshalAll[net.WorkItem](rows)
}

func (t *pgTx) UpdateWorkItem(ctx context.Context, wi *net.WorkItem) error {
	data, err := json.Marshal(wi)
	if err != nil {
		return fmt.Errorf("postgres: marshal work item: %w", err)
	}
	q, args, err := psql.Update("work_items").
		Set("data", data).
		Set("aggregate_id", aggregateIDOf(wi)).
		Where(sqEq("id", string(wi.ID))).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("workItem", string(wi.ID))
	}
	return nil
}
