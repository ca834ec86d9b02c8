package spatial

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func square(x, y, size float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		x, y, x + size, y, x + size, y + size, x, y + size, x, y,
	}, []int{10})
}

func area(mp *geom.MultiPolygon) float64 {
	var total float64
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		for j := 0; j < p.NumLinearRings(); j++ {
			a := signedArea(ringPoints(p.LinearRing(j)))
			if j == 0 {
				total += math.Abs(a)
			} else {
				total -= math.Abs(a)
			}
		}
	}
	return total
}

func TestParseWKT(t *testing.T) {
	g, err := ParseWKT("POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))")
	require.NoError(t, err)
	_, ok := g.(*geom.Polygon)
	assert.True(t, ok)

	_, err = ParseWKT("POLYGON ((0 0")
	assert.Error(t, err)
}

func TestFormatWKT_RoundTrip(t *testing.T) {
	s, err := FormatWKT(square(0, 0, 1))
	require.NoError(t, err)
	g, err := ParseWKT(s)
	require.NoError(t, err)
	assert.Equal(t, square(0, 0, 1).FlatCoords(), g.FlatCoords())
}

func TestToMulti(t *testing.T) {
	mp, err := ToMulti(square(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, mp.NumPolygons())

	same, err := ToMulti(mp)
	require.NoError(t, err)
	assert.Same(t, mp, same)

	_, err = ToMulti(geom.NewPointFlat(geom.XY, []float64{1, 2}))
	assert.Error(t, err)
}

func TestUnion_AdjacentSquares(t *testing.T) {
	mp, err := Union(square(0, 0, 1), square(1, 0, 1))
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())

	shell := ringPoints(mp.Polygon(0).LinearRing(0))
	assert.Len(t, shell, 4, "shared edge and collinear vertices removed")
	assert.InDelta(t, 2.0, area(mp), 1e-9)
}

func TestUnion_Disjoint(t *testing.T) {
	mp, err := Union(square(0, 0, 1), square(5, 5, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestUnion_Hole(t *testing.T) {
	var cells []geom.T
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			if x == 1 && y == 1 {
				continue
			}
			cells = append(cells, square(float64(x), float64(y), 1))
		}
	}
	mp, err := Union(cells...)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
	assert.InDelta(t, 8.0, area(mp), 1e-9)
}

func TestUnion_ClockwiseInput(t *testing.T) {
	cw := geom.NewPolygonFlat(geom.XY, []float64{1, 0, 1, 1, 2, 1, 2, 0, 1, 0}, []int{10})
	mp, err := Union(square(0, 0, 1), cw)
	require.NoError(t, err)
	assert.Equal(t, 1, mp.NumPolygons())
}

func TestSimplify(t *testing.T) {
	// A square with a tiny notch on its bottom edge.
	g := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0, 5, 0, 5.0001, -0.0001, 5.0002, 0, 10, 0, 10, 10, 0, 10, 0, 0,
	}, []int{16})
	mp, err := Simplify(g, 0.001)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Len(t, ringPoints(mp.Polygon(0).LinearRing(0)), 4)

	tiny, err := Simplify(square(0, 0, 0.0001), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, tiny.NumPolygons())
}

func TestSimplify_NearCollinearVertices(t *testing.T) {
	g := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0, 1, 0.0001, 2, 0, 2, 2, 1, 2.0002, 0, 2, 0, 0,
	}, []int{14})
	mp, err := Simplify(g, 0.001)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, []point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, ringPoints(mp.Polygon(0).LinearRing(0)))
}

func TestSimplify_DropsCollapsedHole(t *testing.T) {
	g := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0, 10, 0, 10, 10, 0, 10, 0, 0,
		5, 5, 5.0001, 5, 5.0001, 5.0001, 5, 5,
	}, []int{10, 18})
	mp, err := Simplify(g, 0.01)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
	assert.InDelta(t, 100.0, area(mp), 1e-9)
}

func TestParseCRS(t *testing.T) {
	for _, s := range []string{"EPSG:4326", "epsg:4326", " 4326 "} {
		n, err := ParseCRS(s)
		require.NoError(t, err, s)
		assert.Equal(t, WGS84, n)
	}
	_, err := ParseCRS("EPSG:2230")
	assert.Error(t, err)
	_, err = ParseCRS("ESRI:102100")
	assert.Error(t, err)
}

func TestTransform_MercatorRoundTrip(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{-95.3698, 29.7604})
	m, err := Transform(p, WGS84, WebMercator)
	require.NoError(t, err)
	assert.InDelta(t, -10616517.57, m.FlatCoords()[0], 1.0)

	back, err := Transform(m, WebMercator, NAD83)
	require.NoError(t, err)
	assert.InDelta(t, -95.3698, back.FlatCoords()[0], 1e-9)
	assert.InDelta(t, 29.7604, back.FlatCoords()[1], 1e-9)

	assert.Equal(t, -95.3698, p.FlatCoords()[0], "input is not mutated")
}

func TestTransform_Geographic(t *testing.T) {
	g, err := Transform(square(0, 0, 1), NAD83, WGS84)
	require.NoError(t, err)
	assert.Equal(t, square(0, 0, 1).FlatCoords(), g.FlatCoords())
}

func TestPRJ(t *testing.T) {
	s, err := PRJ(WGS84)
	require.NoError(t, err)
	assert.Contains(t, s, "GCS_WGS_1984")
	_, err = PRJ(2230)
	assert.Error(t, err)
}

func TestEncodeEWKB(t *testing.T) {
	data, err := EncodeEWKB(square(0, 0, 1), WGS84)
	require.NoError(t, err)
	require.True(t, len(data) > 9)
	assert.Equal(t, byte(1), data[0], "little endian")

	_, err = EncodeEWKB(nil, WGS84)
	assert.Error(t, err)
}

func TestShapefile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pga.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("PARAMVALUE", 16)}))

	shape, err := ToShape(square(0, 0, 1))
	require.NoError(t, err)
	n := w.Write(shape)
	require.NoError(t, w.WriteAttribute(int(n), 0, "0.25"))
	w.Close()

	f, err := ReadShapefile(path)
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, "0.25", f.String(0, "PARAMVALUE"))

	g, err := ParseWKT(f.String(0, "geometry"))
	require.NoError(t, err)
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.InDelta(t, 1.0, area(mp), 1e-9)
}

func TestToShape_Orientation(t *testing.T) {
	shape, err := ToShape(square(0, 0, 1))
	require.NoError(t, err)
	pts := make([]point, 0, len(shape.Points))
	for _, p := range shape.Points[:len(shape.Points)-1] {
		pts = append(pts, point{p.X, p.Y})
	}
	assert.Less(t, signedArea(pts), 0.0, "shell is clockwise")

	_, err = ToShape(geom.NewPointFlat(geom.XY, []float64{0, 0}))
	assert.Error(t, err)
}
