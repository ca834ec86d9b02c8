package db

import (
	"time"

	"github.com/rotisserie/eris"
)

// Open builds the connector for a configured store driver.
func Open(driver, dsn string, timeout time.Duration) (Connector, error) {
	d, ok := DialectFor(driver)
	if !ok {
		return nil, eris.Errorf("db: unsupported store driver: %s", driver)
	}
	switch d {
	case SQLServer:
		return NewSQLServer(dsn, timeout)
	case Postgres:
		return NewPostgres(dsn, timeout)
	default:
		return NewSQLite(dsn, timeout), nil
	}
}
