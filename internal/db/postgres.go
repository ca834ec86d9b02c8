package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/model"
)

// PostgresConnector opens sessions against a PostGIS mirror of the Hazus
// schema, where every study region lives in its own schema.
type PostgresConnector struct {
	cfg     *pgxpool.Config
	timeout time.Duration
}

// NewPostgres parses a Postgres connection string.
func NewPostgres(connString string, timeout time.Duration) (*PostgresConnector, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	// One connection per query batch; the pool only exists to reuse pgx plumbing.
	cfg.MaxConns = 1
	cfg.MinConns = 0
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.RuntimeParams["application_name"] = "hazus-cli"
	return &PostgresConnector{cfg: cfg, timeout: timeout}, nil
}

func (c *PostgresConnector) Dialect() Dialect { return Postgres }

// Connect implements Connector. The database name selects a schema, which
// Dialect.Table already qualifies, so it only feeds the search path.
func (c *PostgresConnector) Connect(ctx context.Context, database string) (Conn, error) {
	cfg := c.cfg.Copy()
	if database != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = database + ",public"
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return NewPostgresConn(pool, c.timeout), nil
}

// PostgresConn implements Conn over a Pool.
type PostgresConn struct {
	pool    Pool
	timeout time.Duration
}

// NewPostgresConn wraps an open pool.
func NewPostgresConn(pool Pool, timeout time.Duration) *PostgresConn {
	return &PostgresConn{pool: pool, timeout: timeout}
}

// Pool exposes the underlying pool for COPY-based publishing.
func (c *PostgresConn) Pool() Pool { return c.pool }

func (c *PostgresConn) Dialect() Dialect { return Postgres }

func (c *PostgresConn) Close() error {
	c.pool.Close()
	return nil
}

func (c *PostgresConn) Query(ctx context.Context, query string) (*frame.Frame, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, queryError(query, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}

	f := frame.New(model.LevelNone, cols...)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, queryError(query, eris.Wrap(err, "postgres: read row"))
		}
		for i, v := range vals {
			vals[i] = normalizePG(v)
		}
		f.Rows = append(f.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(query, err)
	}
	return f, nil
}

func (c *PostgresConn) Exec(ctx context.Context, stmt string) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.pool.Exec(ctx, stmt); err != nil {
		return queryError(stmt, err)
	}
	return nil
}

func normalizePG(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case []byte:
		return string(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	}
	return v
}
