package hazard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazus-cli/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	for _, h := range model.Hazards {
		assert.NotEmpty(t, c[h], h)
	}
}

func TestCandidates_Hurricane(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	layers := c.Candidates(model.HazardHurricane, "100")
	require.Len(t, layers, 1)
	assert.Equal(t, "100", layers[0].ReturnPeriod)

	p := params(model.HazardHurricane, "Ike", "100")
	q, err := layers[0].SourceText(p)
	require.NoError(t, err)
	assert.Contains(t, q, "f100yr")
	assert.Contains(t, q, "[Harris].dbo.[huHazardMapWindSpeed]")

	assert.Empty(t, c.Candidates(model.HazardHurricane, "999"))
	assert.Len(t, c.Candidates(model.HazardHurricane, "0"), 2)
}

func TestCandidates_FloodMixed(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	for _, rp := range []string{"mixed", "Mixed", " MIXED "} {
		layers := c.Candidates(model.HazardFlood, rp)
		require.Len(t, layers, 2, rp)
		for _, l := range layers {
			assert.Equal(t, model.ReturnPeriodDeterministic, l.ReturnPeriod)
		}
	}

	layers := c.Candidates(model.HazardFlood, "100")
	require.Len(t, layers, 2)
	for _, l := range layers {
		assert.Equal(t, LayerRaster, l.Kind)
		assert.Equal(t, 0.1, l.Threshold)
		assert.True(t, l.Round)
	}
}

func TestCandidates_AnyReturnPeriod(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	layers := c.Candidates(model.HazardTsunami, "0")
	require.Len(t, layers, 1)
	assert.Equal(t, 60.0, layers[0].Ceiling)

	eq := c.Candidates(model.HazardEarthquake, "0")
	require.Len(t, eq, 1)
	fb, err := eq[0].FallbackText(params(model.HazardEarthquake, "S1", "0"))
	require.NoError(t, err)
	assert.Contains(t, fb, "PGA")
	assert.Equal(t, model.LevelTract, eq[0].KeyLevel())
}

func TestLayer_Title(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	title, err := c.Candidates(model.HazardFlood, "0")[0].Title(params(model.HazardFlood, "spring  flood", "0"))
	require.NoError(t, err)
	assert.Equal(t, "Spring Flood Riverine Deterministic Depth", title)

	l := c.Candidates(model.HazardFlood, "100")[0]
	path, err := l.SourceText(params(model.HazardFlood, "S1", "100"))
	require.NoError(t, err)
	assert.Equal(t, "Harris/S1/Riverine/Depth/rpd100/w001001.flt", path)
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := ParseCatalog([]byte("volcano:\n  - {name: x, kind: sql, source: y}\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("flood:\n  - {name: x, kind: wms, source: y}\n"))
	assert.ErrorContains(t, err, "unknown kind")

	_, err = ParseCatalog([]byte("flood:\n  - {name: x, kind: sql}\n"))
	assert.ErrorContains(t, err, "missing source")

	c, err := ParseCatalog([]byte("fl:\n  - {name: x, kind: sql, source: y}\n"))
	require.NoError(t, err)
	assert.Equal(t, AnyReturnPeriod, c[model.HazardFlood][0].ReturnPeriod)
}
