package spatial

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

type edge struct{ a, b point }

// Union dissolves polygonal geometries into one MultiPolygon by cancelling
// boundary edges shared between inputs. Inputs must meet edge to edge with
// identical vertices, as raster cells and census units do; overlapping
// interiors are not merged.
func Union(gs ...geom.T) (*geom.MultiPolygon, error) {
	polys, err := Polygons(gs...)
	if err != nil {
		return nil, err
	}

	var order []edge
	live := map[edge]int{}
	add := func(pts []point) {
		for i := range pts {
			e := edge{pts[i], pts[(i+1)%len(pts)]}
			if e.a == e.b {
				continue
			}
			rev := edge{e.b, e.a}
			if live[rev] > 0 {
				live[rev]--
				continue
			}
			if live[e] == 0 {
				order = append(order, e)
			}
			live[e]++
		}
	}
	for _, p := range polys {
		for i := 0; i < p.NumLinearRings(); i++ {
			pts := ringPoints(p.LinearRing(i))
			if len(pts) < 3 {
				continue
			}
			// Shells counter-clockwise, holes clockwise.
			if a := signedArea(pts); (i == 0 && a < 0) || (i > 0 && a > 0) {
				pts = reversed(pts)
			}
			add(pts)
		}
	}

	rings := stitch(order, live)
	return assemble(rings)
}

// stitch walks the surviving directed edges into closed rings. Where
// regions touch at a single vertex the walk takes the leftmost turn, keeping
// the filled side on its left so touching regions stay separate rings.
func stitch(order []edge, live map[edge]int) [][]point {
	out := map[point][]point{}
	for _, e := range order {
		for n := live[e]; n > 0; n-- {
			out[e.a] = append(out[e.a], e.b)
		}
	}
	take := func(prev, from point) (point, bool) {
		next := out[from]
		if len(next) == 0 {
			return point{}, false
		}
		best := 0
		if len(next) > 1 {
			bestTurn := math.Inf(-1)
			for i, to := range next {
				if turn := turnAngle(prev, from, to); turn > bestTurn {
					best, bestTurn = i, turn
				}
			}
		}
		to := next[best]
		out[from] = append(next[:best], next[best+1:]...)
		return to, true
	}

	var rings [][]point
	for _, e := range order {
		for live[e] > 0 && contains1(out[e.a], e.b) {
			live[e]--
			removeOne(out, e)
			ring := []point{e.a}
			prev, cur, ok := e.a, e.b, true
			for ok && cur != e.a {
				ring = append(ring, cur)
				var nxt point
				nxt, ok = take(prev, cur)
				prev, cur = cur, nxt
			}
			if ok && len(ring) >= 3 {
				rings = append(rings, dropCollinear(ring))
			}
		}
	}
	return rings
}

func contains1(pts []point, p point) bool {
	for _, q := range pts {
		if q == p {
			return true
		}
	}
	return false
}

func removeOne(out map[point][]point, e edge) {
	next := out[e.a]
	for i, q := range next {
		if q == e.b {
			out[e.a] = append(next[:i], next[i+1:]...)
			return
		}
	}
}

// turnAngle is the signed angle from the direction prev->from to from->to,
// positive when turning left.
func turnAngle(prev, from, to point) float64 {
	ax, ay := from[0]-prev[0], from[1]-prev[1]
	bx, by := to[0]-from[0], to[1]-from[1]
	return math.Atan2(ax*by-ay*bx, ax*bx+ay*by)
}

// assemble pairs holes with the smallest shell containing them.
func assemble(rings [][]point) (*geom.MultiPolygon, error) {
	type shell struct {
		pts   []point
		area  float64
		holes [][]point
	}
	var shells []*shell
	var holes [][]point
	for _, r := range rings {
		if a := signedArea(r); a > 0 {
			shells = append(shells, &shell{pts: r, area: a})
		} else if a < 0 {
			holes = append(holes, r)
		}
	}
	for _, h := range holes {
		var best *shell
		for _, s := range shells {
			if contains(s.pts, h[0]) && (best == nil || s.area < best.area) {
				best = s
			}
		}
		if best != nil {
			best.holes = append(best.holes, h)
		}
	}
	sort.SliceStable(shells, func(i, j int) bool {
		return less(shells[i].pts, shells[j].pts)
	})

	mp := geom.NewMultiPolygon(geom.XY)
	for _, s := range shells {
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, closed(s.pts))); err != nil {
			return nil, eris.Wrap(err, "spatial: dissolve shell")
		}
		for _, h := range s.holes {
			if err := poly.Push(geom.NewLinearRingFlat(geom.XY, closed(h))); err != nil {
				return nil, eris.Wrap(err, "spatial: dissolve hole")
			}
		}
		if err := mp.Push(poly); err != nil {
			return nil, eris.Wrap(err, "spatial: dissolve")
		}
	}
	return mp, nil
}

// less orders rings by their lowest-then-leftmost vertex so output is stable.
func less(a, b []point) bool {
	ma, mb := minPoint(a), minPoint(b)
	if ma[1] != mb[1] {
		return ma[1] < mb[1]
	}
	return ma[0] < mb[0]
}

func minPoint(pts []point) point {
	m := point{math.Inf(1), math.Inf(1)}
	for _, p := range pts {
		if p[1] < m[1] || (p[1] == m[1] && p[0] < m[0]) {
			m = p
		}
	}
	return m
}
