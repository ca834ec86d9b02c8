package db

import (
	"fmt"
	"strings"
)

// Dialect renders the few constructs that differ between the supported stores.
type Dialect struct {
	Name string
}

var (
	SQLServer = Dialect{Name: "sqlserver"}
	Postgres  = Dialect{Name: "postgres"}
	SQLite    = Dialect{Name: "sqlite"}
)

// DialectFor maps a store driver name to its dialect.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case SQLServer.Name, "mssql":
		return SQLServer, true
	case Postgres.Name, "pgx":
		return Postgres, true
	case SQLite.Name:
		return SQLite, true
	}
	return Dialect{}, false
}

// Quote quotes an identifier.
func (d Dialect) Quote(ident string) string {
	if d == SQLServer {
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Table returns a reference to table inside database. SQL Server addresses
// the database's dbo schema, Postgres mirrors keep one schema per region, and
// SQLite mirrors keep one file per region so the database is implied.
func (d Dialect) Table(database, table string) string {
	switch d {
	case SQLServer:
		return d.Quote(database) + ".dbo." + d.Quote(table)
	case Postgres:
		return d.Quote(database) + "." + d.Quote(table)
	}
	return d.Quote(table)
}

// Literal renders a string literal.
func (d Dialect) Literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// WKT returns an expression yielding the well-known text of a geometry column.
func (d Dialect) WKT(col string) string {
	switch d {
	case SQLServer:
		return col + ".STAsText()"
	case Postgres:
		return "ST_AsText(" + col + ")"
	}
	return col
}

// Left returns the first n characters of expr.
func (d Dialect) Left(expr string, n int) string {
	if d == SQLite {
		return fmt.Sprintf("substr(%s, 1, %d)", expr, n)
	}
	return fmt.Sprintf("LEFT(%s, %d)", expr, n)
}

// Text casts expr to a character type.
func (d Dialect) Text(expr string) string {
	if d == SQLServer {
		return "CAST(" + expr + " AS varchar(64))"
	}
	return "CAST(" + expr + " AS text)"
}
