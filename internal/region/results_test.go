package region

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/model"
)

func selected(s *fakeStore, sel model.Selection) *Region {
	r := New(s, "Harris")
	r.sel = sel
	return r
}

var hurricaneSel = model.Selection{Hazard: model.HazardHurricane, Scenario: "Ike", ReturnPeriod: "0"}

func TestResults_RequiresSelection(t *testing.T) {
	r := New(&fakeStore{}, "Harris")
	_, err := r.Results(context.Background())
	assert.ErrorContains(t, err, "no active hazard")

	r.sel = model.Selection{Hazard: model.HazardFlood}
	_, err = r.Results(context.Background())
	assert.ErrorContains(t, err, "no active scenario")
}

func TestResults_MergeAndFilter(t *testing.T) {
	s := &fakeStore{}
	s.on("AS [EconLoss]", []string{"tract", "EconLoss"},
		row("48201000100", 1500.0),
		row("48201000200", nil),
		row("48201000300", 250.0),
	)
	s.on("AS [Destroyed]", []string{"tract", "Affected", "Minor", "Major", "Destroyed"},
		row("48201000100", 3.0, 2.0, 1.0, 0.0),
		row("48201000400", 9.0, 9.0, 9.0, 9.0),
	)
	s.fail("AS [DisplacedHouseholds]", errors.New("timeout"))
	s.on("AS [ShelterNeeds]", []string{"tract", "ShelterNeeds"},
		row("48201000100", nil),
		row("48201000300", nil),
	)
	s.on("AS [DebrisTotal]", []string{"tract", "DebrisBW", "DebrisCS", "DebrisTree", "DebrisTotal"},
		row("48201000300", 1000.0, 0.0, 500.0, 1500.0),
	)

	r := selected(s, hurricaneSel)
	out, err := r.Results(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.LevelTract, out.Level)
	require.Equal(t, 2, out.Len(), "one row per tract with economic loss")
	assert.Equal(t, "48201000100", out.Key(0))
	assert.Equal(t, "48201000300", out.Key(1))

	assert.True(t, out.Has("Affected"))
	assert.True(t, out.Has("DebrisTotal"))
	assert.False(t, out.Has("DisplacedHouseholds"), "failed metric left out")
	assert.False(t, out.Has("ShelterNeeds"), "all-null column dropped")
	assert.False(t, out.Has("Injuries_Day"), "unmodelled metric dropped")
	assert.Nil(t, out.Value(1, "Affected"))
	assert.Equal(t, 1500.0, out.Value(1, "DebrisTotal"))
}

func TestResults_EconomicLossUnavailable(t *testing.T) {
	s := &fakeStore{}
	s.fail("AS [EconLoss]", errors.New("boom"))
	r := selected(s, hurricaneSel)

	out, err := r.Results(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, []string{"tract"}, out.Columns)
}

func TestResults_NumericKeys(t *testing.T) {
	s := &fakeStore{}
	s.on("AS [EconLoss]", []string{"tract", "EconLoss"}, row(int64(48201000100), 1.0))
	s.on("AS [Population]", []string{"tract", "Population", "Households"}, row("48201000100", int64(4000), int64(1500)))
	r := selected(s, hurricaneSel)

	out, err := r.Results(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, int64(4000), out.Value(0, "Population"))
}

func TestBuildingDamageByOccupancy(t *testing.T) {
	s := &fakeStore{}
	s.on("GROUP BY GenBldgOrGenOcc", []string{"Occupancy", "Total", "Affected", "Minor", "Major", "Destroyed"},
		row("RES", 100.0, 10.0, 5.0, 2.0, 1.0),
	)
	r := selected(s, hurricaneSel)
	out, err := r.BuildingDamageByOccupancy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.LevelNone, out.Level)
	assert.Equal(t, "RES", out.String(0, "Occupancy"))
}

func TestBuildingDamageByType_QueryError(t *testing.T) {
	s := &fakeStore{}
	s.fail("GROUP BY BldgType", errors.New("deadlock"))
	r := selected(s, hurricaneSel)
	_, err := r.BuildingDamageByType(context.Background())
	var qe *db.QueryExecutionError
	assert.True(t, errors.As(err, &qe))
}

func TestEssentialFacilities_TsunamiUnmodelled(t *testing.T) {
	r := selected(&fakeStore{}, model.Selection{Hazard: model.HazardTsunami, Scenario: "S", ReturnPeriod: "0"})
	out, err := r.EssentialFacilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Contains(t, out.Columns, "FacilityName")
}

func TestTravelTimeToSafety(t *testing.T) {
	r := selected(&fakeStore{}, hurricaneSel)
	_, err := r.TravelTimeToSafety(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))

	s := &fakeStore{}
	s.on("[tsTravelTime]", []string{"block", "Population", "TravelTimeSlow", "TravelTimeModerate", "TravelTimeFast"},
		row("530090001001000", 12.0, 30.0, 20.0, 10.0),
	)
	r = selected(s, model.Selection{Hazard: model.HazardTsunami, Scenario: "S", ReturnPeriod: "0"})
	out, err := r.TravelTimeToSafety(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.LevelBlock, out.Level)
	assert.Equal(t, 1, out.Len())
}

func TestCounties(t *testing.T) {
	s := &fakeStore{}
	s.on("[hzCounty]", []string{"county", "CountyName", "State"}, row("48201", "Harris", "Texas"))
	r := New(s, "Harris")
	out, err := r.Counties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.LevelCounty, out.Level)
	assert.Equal(t, "48201", out.Key(0))
	assert.True(t, s.ran("[syHazus].dbo.[syState]"))
}
