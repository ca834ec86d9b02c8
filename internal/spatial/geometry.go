// Package spatial holds the geometry plumbing shared by the geometry
// resolver, the raster polygonizer and the exporters: WKT decoding,
// polygon normalisation, dissolve, simplification and reprojection.
package spatial

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ParseWKT decodes a well-known text geometry as returned by the store.
func ParseWKT(s string) (geom.T, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: parse WKT")
	}
	return g, nil
}

// FormatWKT encodes g as well-known text.
func FormatWKT(g geom.T) (string, error) {
	s, err := wkt.Marshal(g)
	if err != nil {
		return "", eris.Wrap(err, "spatial: format WKT")
	}
	return s, nil
}

// ToMulti normalises a polygonal geometry to a MultiPolygon.
func ToMulti(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(t.Layout()).SetSRID(t.SRID())
		if err := mp.Push(t); err != nil {
			return nil, eris.Wrap(err, "spatial: polygon to multipolygon")
		}
		return mp, nil
	}
	return nil, eris.Errorf("spatial: %T is not polygonal", g)
}

// Polygons flattens polygonal geometries into their member polygons.
func Polygons(gs ...geom.T) ([]*geom.Polygon, error) {
	var out []*geom.Polygon
	for _, g := range gs {
		switch t := g.(type) {
		case nil:
		case *geom.Polygon:
			out = append(out, t)
		case *geom.MultiPolygon:
			for i := 0; i < t.NumPolygons(); i++ {
				out = append(out, t.Polygon(i))
			}
		default:
			return nil, eris.Errorf("spatial: %T is not polygonal", g)
		}
	}
	return out, nil
}

// EncodeEWKB encodes g as little-endian EWKB tagged with srid, the form
// PostGIS accepts in COPY.
func EncodeEWKB(g geom.T, srid int) ([]byte, error) {
	var tagged geom.T
	switch t := g.(type) {
	case *geom.Point:
		tagged = t.Clone().SetSRID(srid)
	case *geom.LineString:
		tagged = t.Clone().SetSRID(srid)
	case *geom.MultiLineString:
		tagged = t.Clone().SetSRID(srid)
	case *geom.Polygon:
		tagged = t.Clone().SetSRID(srid)
	case *geom.MultiPolygon:
		tagged = t.Clone().SetSRID(srid)
	default:
		return nil, eris.Errorf("spatial: cannot encode %T", g)
	}
	data, err := ewkb.Marshal(tagged, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: encode EWKB")
	}
	return data, nil
}

type point [2]float64

// ringPoints reads a closed ring's vertices, dropping the closing duplicate.
func ringPoints(r *geom.LinearRing) []point {
	flat, stride := r.FlatCoords(), r.Stride()
	n := len(flat) / stride
	pts := make([]point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, point{flat[i*stride], flat[i*stride+1]})
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// closed returns flat XY coordinates for pts with the first vertex repeated.
func closed(pts []point) []float64 {
	flat := make([]float64, 0, 2*len(pts)+2)
	for _, p := range pts {
		flat = append(flat, p[0], p[1])
	}
	return append(flat, pts[0][0], pts[0][1])
}

// signedArea is positive for counter-clockwise rings.
func signedArea(pts []point) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return a / 2
}

func reversed(pts []point) []point {
	out := make([]point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// contains reports whether p lies inside ring by ray casting.
func contains(ring []point, p point) bool {
	in := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a[1] > p[1]) != (b[1] > p[1]) &&
			p[0] < (b[0]-a[0])*(p[1]-a[1])/(b[1]-a[1])+a[0] {
			in = !in
		}
	}
	return in
}

// dropCollinear removes vertices lying on the segment between their neighbours.
func dropCollinear(pts []point) []point {
	if len(pts) < 4 {
		return pts
	}
	out := make([]point, 0, len(pts))
	for i := range pts {
		prev := pts[(i+len(pts)-1)%len(pts)]
		next := pts[(i+1)%len(pts)]
		cross := (pts[i][0]-prev[0])*(next[1]-prev[1]) - (pts[i][1]-prev[1])*(next[0]-prev[0])
		if math.Abs(cross) > 1e-12 {
			out = append(out, pts[i])
		}
	}
	if len(out) < 3 {
		return pts
	}
	return out
}
