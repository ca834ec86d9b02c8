package region

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/model"
)

// floodMirror builds a one-file SQLite mirror of a flood study region with
// one scenario (S1) and one return period (100).
func floodMirror(t *testing.T) db.Connector {
	t.Helper()
	c := db.NewSQLite(filepath.Join(t.TempDir(), "hazus.db"), time.Minute)
	conn, err := c.Connect(context.Background(), "Harris")
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck

	stmts := []string{
		`CREATE TABLE syStudyRegion (RegionName TEXT, HasEqHazard INTEGER, HasFlHazard INTEGER, HasHuHazard INTEGER, HasTsHazard INTEGER)`,
		`INSERT INTO syStudyRegion VALUES ('Harris', 0, 1, 0, 0)`,
		`CREATE TABLE flStudyCase (StudyCaseID INTEGER, StudyCaseName TEXT)`,
		`INSERT INTO flStudyCase VALUES (1, 'S1')`,
		`CREATE TABLE flFRGBSEcLossByTotal (CensusBlock TEXT, StudyCaseId INTEGER, ReturnPeriodId TEXT, TotalLoss REAL)`,
		`INSERT INTO flFRGBSEcLossByTotal VALUES
			('482010001001000', 1, '100', 12.5),
			('482010001001000', 1, '100', 2.5),
			('482010001001001', 1, '100', 4),
			('482010001001002', 1, '100', NULL)`,
		`CREATE TABLE flFRGBSPhysDmgByCount (CensusBlock TEXT, StudyCaseId INTEGER, ReturnPeriodId TEXT, Occupancy TEXT, BldgType TEXT,
			Dmg0 REAL, Dmg1_10 REAL, Dmg11_20 REAL, Dmg21_30 REAL, Dmg31_40 REAL, Dmg41_50 REAL, DmgSubstantial REAL)`,
		`INSERT INTO flFRGBSPhysDmgByCount VALUES
			('482010001001000', 1, '100', 'RES1', 'Wood', 10, 3, 1, 1, 0, 0, 1)`,
		`CREATE TABLE flFRShelter (CensusBlock TEXT, StudyCaseId INTEGER, ReturnPeriodId TEXT, DisplacedHouseholds REAL, ShortTermShelter REAL)`,
		`INSERT INTO flFRShelter VALUES ('482010001001000', 1, '100', 7, 2), ('482010001001001', 1, '100', 1, 0)`,
		`CREATE TABLE flFRDebris (CensusBlock TEXT, StudyCaseId INTEGER, ReturnPeriodId TEXT, FinishTons REAL, StructureTons REAL, FoundationTons REAL)`,
		`INSERT INTO flFRDebris VALUES ('482010001001000', 1, '100', 1.5, 0, 0.5), ('482010001001001', 1, '100', 0, 0, 0)`,
		`CREATE TABLE hzDemographicsB (CensusBlock TEXT, Population INTEGER, Households INTEGER)`,
		`INSERT INTO hzDemographicsB VALUES ('482010001001000', 40, 15), ('482010001001001', 12, 5)`,
		`CREATE TABLE hzCensusBlock (CensusBlock TEXT, Shape TEXT)`,
		`INSERT INTO hzCensusBlock VALUES
			('482010001001000', 'POLYGON ((-95.4 29.7, -95.3 29.7, -95.3 29.8, -95.4 29.8, -95.4 29.7))'),
			('482010001001001', 'POLYGON ((-95.3 29.7, -95.2 29.7, -95.2 29.8, -95.3 29.8, -95.3 29.7))')`,
	}
	for _, s := range stmts {
		require.NoError(t, conn.Exec(context.Background(), s), s)
	}
	return c
}

func TestSQLite_FloodResults(t *testing.T) {
	ctx := context.Background()
	r := New(floodMirror(t), "Harris")
	require.NoError(t, r.Select(ctx, model.Selection{}))
	assert.Equal(t, model.Selection{Hazard: model.HazardFlood, Scenario: "S1", ReturnPeriod: "100"}, r.Selection())

	out, err := r.Results(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.LevelBlock, out.Level)
	assert.Equal(t, "block", out.Columns[0])
	for _, col := range []string{"EconLoss", "DisplacedHouseholds", "DebrisTotal", "Affected", "Population"} {
		assert.True(t, out.Has(col), col)
	}
	assert.False(t, out.Has("Injuries_Day"))

	require.Equal(t, 2, out.Len(), "null-loss block dropped")
	assert.Equal(t, "482010001001000", out.Key(0))
	loss, ok := out.Float(0, "EconLoss")
	require.True(t, ok)
	assert.Equal(t, 15000.0, loss)
	debris, ok := out.Float(0, "DebrisTotal")
	require.True(t, ok)
	assert.Equal(t, 2.0, debris, "flood debris is not rescaled")
	minor, ok := out.Float(0, "Minor")
	require.True(t, ok)
	assert.Equal(t, 2.0, minor)

	seen := map[string]bool{}
	for i := 0; i < out.Len(); i++ {
		assert.False(t, seen[out.Key(i)], "duplicate key")
		seen[out.Key(i)] = true
	}

	geo, err := r.AddGeometry(ctx, out)
	require.NoError(t, err)
	assert.True(t, geo.HasGeometry())
	assert.Contains(t, geo.String(1, frame.GeometryColumn), "POLYGON")
}

func TestSQLite_FloodSummaries(t *testing.T) {
	ctx := context.Background()
	r := New(floodMirror(t), "Harris")
	require.NoError(t, r.Select(ctx, model.Selection{Hazard: model.HazardFlood, Scenario: "S1", ReturnPeriod: "100"}))

	occ, err := r.BuildingDamageByOccupancy(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, occ.Len())
	assert.Equal(t, "RES1", occ.String(0, "Occupancy"))
	total, _ := occ.Float(0, "Total")
	assert.Equal(t, 16.0, total)

	typ, err := r.BuildingDamageByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wood", typ.String(0, "BuildingType"))

	_, err = r.EssentialFacilities(ctx)
	assert.Error(t, err, "facility tables are absent from the mirror")
}
