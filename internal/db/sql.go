package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/model"
)

// sqlConn adapts a database/sql handle (SQL Server, SQLite) to Conn.
type sqlConn struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
}

func (c *sqlConn) Dialect() Dialect { return c.dialect }

func (c *sqlConn) Close() error { return c.db.Close() }

func (c *sqlConn) Query(ctx context.Context, query string) (*frame.Frame, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, queryError(query, err)
	}
	defer rows.Close() //nolint:errcheck

	f, err := scanSQLRows(rows)
	if err != nil {
		return nil, queryError(query, err)
	}
	return f, nil
}

func (c *sqlConn) Exec(ctx context.Context, stmt string) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return queryError(stmt, err)
	}
	return nil
}

// scanSQLRows reads a result set into a frame. Decimal and money columns
// arrive as text from the SQL Server driver and are parsed to float64;
// other byte values become strings so that zero-padded FIPS codes survive.
func scanSQLRows(rows *sql.Rows) (*frame.Frame, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "db: read columns")
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, eris.Wrap(err, "db: read column types")
	}
	numeric := make([]bool, len(cols))
	for i, t := range types {
		numeric[i] = isNumericType(t.DatabaseTypeName())
	}

	f := frame.New(model.LevelNone, cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "db: scan row")
		}
		for i, v := range vals {
			vals[i] = normalize(v, numeric[i])
		}
		f.Rows = append(f.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "db: iterate rows")
	}
	return f, nil
}

func isNumericType(name string) bool {
	switch strings.ToUpper(name) {
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY", "REAL", "FLOAT", "DOUBLE":
		return true
	}
	return false
}

func normalize(v any, numeric bool) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	if numeric {
		if x, err := strconv.ParseFloat(s, 64); err == nil {
			return x
		}
	}
	return s
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
