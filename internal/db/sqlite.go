package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// DatabasePlaceholder in a SQLite DSN is replaced by the database name, so a
// directory of per-region mirror files can be addressed by region name.
const DatabasePlaceholder = "{database}"

// SQLiteConnector opens SQLite mirrors of study-region databases.
type SQLiteConnector struct {
	dsn     string
	timeout time.Duration
}

// NewSQLite creates a connector. dsn may contain DatabasePlaceholder.
func NewSQLite(dsn string, timeout time.Duration) *SQLiteConnector {
	return &SQLiteConnector{dsn: dsn, timeout: timeout}
}

func (c *SQLiteConnector) Dialect() Dialect { return SQLite }

// Connect implements Connector.
func (c *SQLiteConnector) Connect(ctx context.Context, database string) (Conn, error) {
	dsn := strings.ReplaceAll(c.dsn, DatabasePlaceholder, database)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrap(err, "sqlite: exec PRAGMA busy_timeout=5000")
	}
	return &sqlConn{db: sqlDB, dialect: SQLite, timeout: c.timeout}, nil
}
