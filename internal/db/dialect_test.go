package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialectTable(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{SQLServer, "[RegionA].dbo.[eqTractEconLoss]"},
		{Postgres, `"RegionA"."eqTractEconLoss"`},
		{SQLite, `"eqTractEconLoss"`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Table("RegionA", "eqTractEconLoss"))
		})
	}
}

func TestDialectLiteralEscapesQuotes(t *testing.T) {
	assert.Equal(t, "'O''Brien County'", SQLServer.Literal("O'Brien County"))
}

func TestDialectWKTAndLeft(t *testing.T) {
	assert.Equal(t, "Shape.STAsText()", SQLServer.WKT("Shape"))
	assert.Equal(t, "ST_AsText(Shape)", Postgres.WKT("Shape"))
	assert.Equal(t, "Shape", SQLite.WKT("Shape"))
	assert.Equal(t, "LEFT(Tract, 5)", SQLServer.Left("Tract", 5))
	assert.Equal(t, "substr(Tract, 1, 5)", SQLite.Left("Tract", 5))
}

func TestDialectFor(t *testing.T) {
	d, ok := DialectFor("mssql")
	assert.True(t, ok)
	assert.Equal(t, SQLServer, d)

	_, ok = DialectFor("oracle")
	assert.False(t, ok)
}

func TestSQLServerDSN(t *testing.T) {
	c, err := NewSQLServer("sqlserver://sa:pw@localhost:1433?encrypt=disable", 0)
	assert.NoError(t, err)
	assert.Contains(t, c.DSN("RegionA"), "database=RegionA")
	assert.NotContains(t, c.DSN(""), "database=")

	_, err = NewSQLServer("postgres://localhost", 0)
	assert.Error(t, err)
}
