package spatial

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Simplify reduces polygon boundaries with Douglas-Peucker at tolerance
// (in coordinate units). Rings that collapse below a triangle are dropped;
// a polygon whose shell collapses is dropped entirely.
func Simplify(g geom.T, tolerance float64) (*geom.MultiPolygon, error) {
	polys, err := Polygons(g)
	if err != nil {
		return nil, err
	}
	mp := geom.NewMultiPolygon(geom.XY)
	for _, p := range polys {
		out := geom.NewPolygon(geom.XY)
		for i := 0; i < p.NumLinearRings(); i++ {
			pts := simplifyRing(p.LinearRing(i), tolerance)
			if len(pts) < 3 {
				if i == 0 {
					break
				}
				continue
			}
			if err := out.Push(geom.NewLinearRingFlat(geom.XY, closed(pts))); err != nil {
				return nil, eris.Wrap(err, "spatial: simplify")
			}
		}
		if out.NumLinearRings() == 0 {
			continue
		}
		if err := mp.Push(out); err != nil {
			return nil, eris.Wrap(err, "spatial: simplify")
		}
	}
	return mp, nil
}

// simplifyRing returns the vertices of r that survive simplification, without
// the closing duplicate.
func simplifyRing(r *geom.LinearRing, tolerance float64) []point {
	flat, stride := r.FlatCoords(), r.Stride()
	kept := xy.SimplifyFlatCoords(flat, tolerance, stride)
	pts := make([]point, 0, len(kept))
	for _, i := range kept {
		pts = append(pts, point{flat[i*stride], flat[i*stride+1]})
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}
