// Package raster reads the regular intensity grids Hazus writes for flood
// depth and tsunami inundation and turns them into vector polygons.
package raster

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Grid is a north-up regular grid. Values are row-major from the top row;
// no-data cells are NaN.
type Grid struct {
	Cols, Rows int
	XMin, YMin float64 // lower-left corner of the lower-left cell
	CellSize   float64
	Values     []float64
}

// At returns the value of the cell at row r (from the top) and column c.
func (g *Grid) At(r, c int) float64 { return g.Values[r*g.Cols+c] }

// YMax is the top edge of the grid.
func (g *Grid) YMax() float64 { return g.YMin + float64(g.Rows)*g.CellSize }

// Open reads an ESRI ASCII grid (.asc) or an ESRI float grid (.flt with a
// sibling .hdr).
func Open(path string) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc":
		return ReadASCIIFile(path)
	case ".flt":
		return ReadFloatFile(path)
	}
	return nil, eris.Errorf("raster: unsupported grid format %s", path)
}

// Clip zeroes every value below threshold.
func (g *Grid) Clip(threshold float64) {
	for i, v := range g.Values {
		if v < threshold {
			g.Values[i] = 0
		}
	}
}

// Ceiling zeroes every value above max.
func (g *Grid) Ceiling(max float64) {
	for i, v := range g.Values {
		if v > max {
			g.Values[i] = 0
		}
	}
}

// Round rounds every value to the nearest unit.
func (g *Grid) Round() {
	for i, v := range g.Values {
		g.Values[i] = math.Round(v)
	}
}

// header holds the keys shared by .asc and .hdr files.
type header struct {
	cols, rows   int
	xll, yll     float64
	center       bool
	cellSize     float64
	noData       float64
	hasNoData    bool
	littleEndian bool
}

func (h *header) set(key, val string) error {
	var err error
	switch strings.ToLower(key) {
	case "ncols":
		h.cols, err = atoi(val)
	case "nrows":
		h.rows, err = atoi(val)
	case "xllcorner":
		h.xll, err = atof(val)
	case "yllcorner":
		h.yll, err = atof(val)
	case "xllcenter":
		h.xll, err = atof(val)
		h.center = true
	case "yllcenter":
		h.yll, err = atof(val)
		h.center = true
	case "cellsize":
		h.cellSize, err = atof(val)
	case "nodata_value":
		h.noData, err = atof(val)
		h.hasNoData = true
	case "byteorder":
		h.littleEndian = !strings.EqualFold(val, "MSBFIRST")
	}
	return err
}

func (h *header) grid() (*Grid, error) {
	if h.cols <= 0 || h.rows <= 0 || h.cellSize <= 0 {
		return nil, eris.Errorf("raster: invalid header ncols=%d nrows=%d cellsize=%g", h.cols, h.rows, h.cellSize)
	}
	g := &Grid{Cols: h.cols, Rows: h.rows, XMin: h.xll, YMin: h.yll, CellSize: h.cellSize}
	if h.center {
		g.XMin -= h.cellSize / 2
		g.YMin -= h.cellSize / 2
	}
	g.Values = make([]float64, 0, h.cols*h.rows)
	return g, nil
}

func (h *header) value(v float64) float64 {
	if h.hasNoData && v == h.noData {
		return math.NaN()
	}
	return v
}
