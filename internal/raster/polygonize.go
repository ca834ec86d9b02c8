package raster

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/hazus-cli/internal/spatial"
)

// Feature is one contiguous region of equal-valued cells.
type Feature struct {
	Value    float64
	Geometry *geom.Polygon
}

// Polygonize traces the grid into polygons, one per contiguous region of
// equal value. Cells that are no-data or below min are skipped. Features are
// ordered by value, then by position.
func Polygonize(g *Grid, min float64) ([]Feature, error) {
	groups := map[float64][]geom.T{}
	top := g.YMax()
	for r := 0; r < g.Rows; r++ {
		y0 := top - float64(r+1)*g.CellSize
		y1 := top - float64(r)*g.CellSize
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c)
			if math.IsNaN(v) || v < min {
				continue
			}
			x0 := g.XMin + float64(c)*g.CellSize
			x1 := g.XMin + float64(c+1)*g.CellSize
			groups[v] = append(groups[v], geom.NewPolygonFlat(geom.XY,
				[]float64{x0, y0, x1, y0, x1, y1, x0, y1, x0, y0}, []int{10}))
		}
	}

	values := make([]float64, 0, len(groups))
	for v := range groups {
		values = append(values, v)
	}
	sort.Float64s(values)

	var out []Feature
	for _, v := range values {
		mp, err := spatial.Union(groups[v]...)
		if err != nil {
			return nil, err
		}
		for i := 0; i < mp.NumPolygons(); i++ {
			out = append(out, Feature{Value: v, Geometry: mp.Polygon(i)})
		}
	}
	return out, nil
}
