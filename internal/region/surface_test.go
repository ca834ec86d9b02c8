package region

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
)

func hurricaneSurfaceStore() *fakeStore {
	s := &fakeStore{}
	for _, col := range []string{"f10yr", "f20yr", "f50yr", "f100yr", "f200yr", "f500yr", "f1000yr"} {
		s.on(col+" AS", []string{"tract", "PARAMVALUE"}, row("48201000100", 120.0))
	}
	s.on("[hzTract]", []string{"tract", "geometry"}, row("48201000100", sq))
	return s
}

func TestHazardSurface_HurricaneSelectsReturnPeriod(t *testing.T) {
	s := hurricaneSurfaceStore()
	r := selected(s, model.Selection{Hazard: model.HazardHurricane, Scenario: "Ike", ReturnPeriod: "100"})

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Contains(t, out.String(0, TitleColumn), "Peak Gust")
	assert.Equal(t, 120.0, out.Value(0, ValueColumn))
	assert.Equal(t, sq, out.Value(0, frame.GeometryColumn))

	assert.True(t, s.ran("f100yr"))
	for _, other := range []string{"f10yr", "f20yr", "f50yr", "f200yr", "f500yr", "f1000yr"} {
		assert.False(t, s.ran(other), other)
	}
}

func TestHazardSurface_NoMatchIsEmpty(t *testing.T) {
	s := hurricaneSurfaceStore()
	r := selected(s, model.Selection{Hazard: model.HazardHurricane, Scenario: "Ike", ReturnPeriod: "999"})

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, []string{TitleColumn, ValueColumn, frame.GeometryColumn}, out.Columns)
	assert.Empty(t, s.queries)
}

func TestHazardSurface_HistoricBeforeDeterministic(t *testing.T) {
	s := &fakeStore{}
	s.on("[huHistoricWindSpeedT]", []string{"tract", "PARAMVALUE"}, row("48201000100", 90.0))
	s.on("[huDetermWindSpeedResults]", []string{"tract", "PARAMVALUE"}, row("48201000100", 95.0))
	s.on("[hzTract]", []string{"tract", "geometry"}, row("48201000100", sq))
	r := selected(s, model.Selection{Hazard: model.HazardHurricane, Scenario: "Ike", ReturnPeriod: "0"})

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 90.0, out.Value(0, ValueColumn))
	assert.Contains(t, out.String(0, TitleColumn), "Historic")
	assert.False(t, s.ran("[huDetermWindSpeedResults]"))
}

func TestHazardSurface_EmptyHistoricUsesDeterministic(t *testing.T) {
	s := &fakeStore{}
	s.on("[huHistoricWindSpeedT]", []string{"tract", "PARAMVALUE"})
	s.on("[huDetermWindSpeedResults]", []string{"tract", "PARAMVALUE"}, row("48201000100", 95.0))
	s.on("[hzTract]", []string{"tract", "geometry"}, row("48201000100", sq))
	r := selected(s, model.Selection{Hazard: model.HazardHurricane, Scenario: "Ike", ReturnPeriod: "0"})

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 95.0, out.Value(0, ValueColumn))
	assert.Contains(t, out.String(0, TitleColumn), "Deterministic")
}

func TestHazardSurface_LayerFailureSkipped(t *testing.T) {
	s := &fakeStore{}
	s.on("[huDetermWindSpeedResults]", []string{"tract", "PARAMVALUE"}, row("48201000100", 95.0))
	s.on("[hzTract]", []string{"tract", "geometry"}, row("48201000100", sq))
	r := selected(s, model.Selection{Hazard: model.HazardHurricane, Scenario: "Ike", ReturnPeriod: "0"})

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 95.0, out.Value(0, ValueColumn))
}

// writeGrid writes a 2x2 little-endian float grid with its header.
func writeGrid(t *testing.T, path string, values []float32) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	hdr := "ncols 2\nnrows 2\nxllcorner -95\nyllcorner 29\ncellsize 0.01\nNODATA_value -9999\nbyteorder LSBFIRST\n"
	require.NoError(t, os.WriteFile(path[:len(path)-4]+".hdr", []byte(hdr), 0o644))
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestHazardSurface_FloodMixedSelectsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeGrid(t, filepath.Join(root, "Harris/S1/Riverine/Depth/mix0/w001001.flt"), []float32{2.2, 1.8, 0.05, 3})
	writeGrid(t, filepath.Join(root, "Harris/S1/Riverine/Depth/rpd100/w001001.flt"), []float32{9, 9, 9, 9})

	r := New(&fakeStore{}, "Harris", WithDataRoot(root))
	r.sel = model.Selection{Hazard: model.HazardFlood, Scenario: "S1", ReturnPeriod: "Mixed"}

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)

	// 2.2 and 1.8 round to one region of 2; 0.05 is clipped; 3 stands alone.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 2.0, out.Value(0, ValueColumn))
	assert.Equal(t, 3.0, out.Value(1, ValueColumn))
	assert.Equal(t, "S1 Riverine Deterministic Depth", out.String(0, TitleColumn))
	assert.Contains(t, out.String(0, frame.GeometryColumn), "POLYGON")
}

func TestHazardSurface_TsunamiCeiling(t *testing.T) {
	root := t.TempDir()
	writeGrid(t, filepath.Join(root, "Harris/S/maxdg_dft/w001001.flt"), []float32{75, 0.5, 4, -9999})

	r := New(&fakeStore{}, "Harris", WithDataRoot(root))
	r.sel = model.Selection{Hazard: model.HazardTsunami, Scenario: "S", ReturnPeriod: "0"}

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 4.0, out.Value(0, ValueColumn))
}

func TestHazardSurface_EarthquakeFallbackQuery(t *testing.T) {
	s := &fakeStore{}
	s.on("PGA AS", []string{"tract", "PARAMVALUE"}, row("06055200100", 0.42))
	s.on("[hzTract]", []string{"tract", "geometry"}, row("06055200100", sq))
	r := New(s, "Napa", WithDataRoot(t.TempDir()))
	r.sel = model.Selection{Hazard: model.HazardEarthquake, Scenario: "Napa", ReturnPeriod: "0"}

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 0.42, out.Value(0, ValueColumn))
	assert.Equal(t, "Napa Peak Ground Acceleration", out.String(0, TitleColumn))
}

func TestHazardSurface_CustomCatalog(t *testing.T) {
	c, err := hazard.ParseCatalog([]byte(`
flood:
  - {name: "depth", return_period: "100", kind: sql, level: block, source: "SELECT 1"}
`))
	require.NoError(t, err)
	s := &fakeStore{}
	s.on("SELECT 1", []string{"block", "PARAMVALUE"}, row("482010001001000", 2.0))
	s.on("[hzCensusBlock]", []string{"block", "geometry"}, row("482010001001000", sq))
	r := New(s, "Harris", WithLayers(c))
	r.sel = model.Selection{Hazard: model.HazardFlood, Scenario: "S1", ReturnPeriod: "100"}

	out, err := r.HazardSurface(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "Depth", out.String(0, TitleColumn))
}
