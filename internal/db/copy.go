package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ColumnDef is one column of a published table.
type ColumnDef struct {
	Name string
	Type string // Postgres type, e.g. "text", "double precision", "geometry(MultiPolygon, 4326)"
}

// ReplaceTable drops schema.table if present and recreates it with cols,
// creating the schema on first use.
func ReplaceTable(ctx context.Context, pool Pool, schema, table string, cols []ColumnDef) error {
	if len(cols) == 0 {
		return eris.New("db: replace table: no columns specified")
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%s %s", pgx.Identifier{c.Name}.Sanitize(), c.Type)
	}

	target := pgx.Identifier{schema, table}.Sanitize()
	stmts := []string{
		"CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize(),
		"DROP TABLE IF EXISTS " + target,
		fmt.Sprintf("CREATE TABLE %s (%s)", target, strings.Join(defs, ", ")),
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return eris.Wrapf(err, "db: replace table %s.%s", schema, table)
		}
	}
	return nil
}

// CopyFromSchema bulk-inserts rows into a schema-qualified table using PostgreSQL COPY protocol.
func CopyFromSchema(ctx context.Context, pool Pool, schema, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{schema, table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s.%s", schema, table)
	}

	return n, nil
}
