// Package db is the relational store gateway: it opens per-batch connections
// to the Hazus study-region databases and returns query results as frames.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sells-group/hazus-cli/internal/frame"
)

// Conn is one logical session against a study-region database.
// Conns are not safe for concurrent use.
type Conn interface {
	// Query runs a raw query and returns its result set as an unkeyed frame.
	Query(ctx context.Context, query string) (*frame.Frame, error)

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, stmt string) error

	// Dialect describes the SQL flavour the connection speaks.
	Dialect() Dialect

	Close() error
}

// Connector opens connections to named databases on one server.
type Connector interface {
	// Connect opens a fresh connection scoped to database. An empty
	// database name connects to the server default.
	Connect(ctx context.Context, database string) (Conn, error)

	Dialect() Dialect
}

// Pool is the subset of pgxpool.Pool used by the Postgres gateway and the
// COPY helpers. pgxmock.PgxPoolIface satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// QueryExecutionError reports a statement the store rejected or timed out on.
type QueryExecutionError struct {
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

func queryError(query string, err error) error {
	return &QueryExecutionError{Query: query, Err: err}
}
