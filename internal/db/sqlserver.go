package db

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb" // registers the sqlserver driver
	"github.com/rotisserie/eris"
)

// SQLServerConnector connects to the SQL Server instance that hosts the
// Hazus study-region databases.
type SQLServerConnector struct {
	dsn     *url.URL
	timeout time.Duration
}

// NewSQLServer parses a sqlserver:// DSN. The database query parameter is
// replaced on every Connect.
func NewSQLServer(dsn string, timeout time.Duration) (*SQLServerConnector, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlserver: parse dsn")
	}
	if u.Scheme != "sqlserver" {
		return nil, eris.Errorf("sqlserver: dsn scheme must be sqlserver, got %q", u.Scheme)
	}
	return &SQLServerConnector{dsn: u, timeout: timeout}, nil
}

func (c *SQLServerConnector) Dialect() Dialect { return SQLServer }

// Connect implements Connector.
func (c *SQLServerConnector) Connect(ctx context.Context, database string) (Conn, error) {
	dsn := c.DSN(database)
	sqlDB, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlserver: open")
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrapf(err, "sqlserver: ping %s", database)
	}
	return &sqlConn{db: sqlDB, dialect: SQLServer, timeout: c.timeout}, nil
}

// DSN returns the connection string scoped to database.
func (c *SQLServerConnector) DSN(database string) string {
	u := *c.dsn
	q := u.Query()
	if database == "" {
		q.Del("database")
	} else {
		q.Set("database", database)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
