package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

func (t *pgTx) CreateCancellationRegion(ctx context.Context, r *net.CancellationRegion) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("postgres: marshal cancellation region: %w", err)
	}
	q, args, err := psql.Insert("cancellation_regions").
		Columns("id", "workflow_id", "owner_id", "data").
		Values(string(r.ID), string(r.WorkflowID), string(r.OwnerID), data).
		ToSql()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, q, args...)
	return err
}

func (t *pgTx) GetCancellationRegionByOwner(ctx context.Context, ownerID net.ID) (*net.CancellationRegion, error) {
	q, args, err := psql.Select("data").From("cancellation_regions").Where(sqEq("owner_id", string(ownerID))).ToSql()
	if err != nil {
		return nil, err
	}
	var row dataRow
	if err := pgxscan.Get(ctx, t.tx, &row, q, args...); err != nil {
		return nil, errs.NotFound("cancellationRegion", string(ownerID))
	}
	var r net.CancellationRegion
	if err := json.Unmarshal(row.Data, &r); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal cancellation region: %w", err)
	}
	return &r, nil
}
