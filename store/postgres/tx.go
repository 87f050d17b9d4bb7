package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type pgTx struct {
	tx pgx.Tx
}

// dataRow is the shared shape every element table's "data" JSONB column
// scans into before being unmarshaled into its net type.
type dataRow struct {
	Data []byte `db:"data"`
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
