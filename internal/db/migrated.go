package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MigratedData returns every row of the pinecone_data table as column/value
// maps. The table is produced by an external migration and may be absent.
func (p *Postgres) MigratedData(ctx context.Context) ([]map[string]any, error) {
	rows, err := p.Pool.Query(ctx, "SELECT * FROM pinecone_data")
	if err != nil {
		if isUndefinedTable(err) {
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("postgres: migrated data: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		if isUndefinedTable(err) {
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("postgres: scan migrated data: %w", err)
	}
	if records == nil {
		records = []map[string]any{}
	}

	return records, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
