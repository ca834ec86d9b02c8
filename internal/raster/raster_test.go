package raster

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleASC = `ncols 3
nrows 2
xllcorner -95.0
yllcorner 29.0
cellsize 0.5
NODATA_value -9999
1 1 -9999
2.4 0.05 1
`

func TestReadASCII(t *testing.T) {
	g, err := ReadASCII(strings.NewReader(sampleASC))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Cols)
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 30.0, g.YMax())
	assert.Equal(t, 1.0, g.At(0, 0))
	assert.True(t, math.IsNaN(g.At(0, 2)))
	assert.Equal(t, 2.4, g.At(1, 0))
}

func TestReadASCII_CenterOrigin(t *testing.T) {
	g, err := ReadASCII(strings.NewReader("ncols 1\nnrows 1\nxllcenter 0.5\nyllcenter 0.5\ncellsize 1\n7\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.XMin)
	assert.Equal(t, 0.0, g.YMin)
}

func TestReadASCII_Short(t *testing.T) {
	_, err := ReadASCII(strings.NewReader("ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"))
	assert.ErrorContains(t, err, "expected 4 cells")

	_, err = ReadASCII(strings.NewReader("ncols 0\nnrows 2\ncellsize 1\n"))
	assert.ErrorContains(t, err, "invalid header")
}

func writeFLT(t *testing.T, dir string, order binary.ByteOrder, orderName string, values []float32) string {
	t.Helper()
	hdr := "ncols 2\nnrows 2\nxllcorner 10\nyllcorner 20\ncellsize 1\nNODATA_value -9999\nbyteorder " + orderName + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "w001001.hdr"), []byte(hdr), 0o644))
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		order.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	path := filepath.Join(dir, "w001001.flt")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestReadFloatFile(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order binary.ByteOrder
	}{
		{"LSBFIRST", binary.LittleEndian},
		{"MSBFIRST", binary.BigEndian},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFLT(t, t.TempDir(), tc.order, tc.name, []float32{1.5, -9999, 3, 4})
			g, err := Open(path)
			require.NoError(t, err)
			assert.Equal(t, 1.5, g.At(0, 0))
			assert.True(t, math.IsNaN(g.At(0, 1)))
			assert.Equal(t, 4.0, g.At(1, 1))
		})
	}
}

func TestReadFloatFile_MissingHeader(t *testing.T) {
	_, err := ReadFloatFile(filepath.Join(t.TempDir(), "x.flt"))
	assert.ErrorContains(t, err, "open header")
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open("depth.tif")
	assert.ErrorContains(t, err, "unsupported grid format")
}

func TestClipRoundCeiling(t *testing.T) {
	g := &Grid{Cols: 4, Rows: 1, CellSize: 1, Values: []float64{0.05, 1.4, 1.6, 75}}
	g.Clip(0.1)
	g.Ceiling(60)
	g.Round()
	assert.Equal(t, []float64{0, 1, 2, 0}, g.Values)
}

func TestPolygonize(t *testing.T) {
	g, err := ReadASCII(strings.NewReader(sampleASC))
	require.NoError(t, err)
	g.Clip(0.1)
	g.Round()

	features, err := Polygonize(g, 1)
	require.NoError(t, err)

	// Value 1: the two top-left cells dissolve into one region, the
	// bottom-right cell is not contiguous with them.
	var ones, twos int
	for _, f := range features {
		switch f.Value {
		case 1:
			ones++
		case 2:
			twos++
		default:
			t.Fatalf("unexpected value %v", f.Value)
		}
	}
	assert.Equal(t, 2, ones)
	assert.Equal(t, 1, twos)
	assert.Equal(t, 1.0, features[0].Value, "ordered by value")
}

func TestPolygonize_SkipsBelowMinimum(t *testing.T) {
	g := &Grid{Cols: 2, Rows: 1, CellSize: 1, Values: []float64{0.5, math.NaN()}}
	features, err := Polygonize(g, 1)
	require.NoError(t, err)
	assert.Empty(t, features)
}
