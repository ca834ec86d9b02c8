package spatial

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/model"
)

// ReadShapefile loads a shapefile into a frame: one column per attribute
// (trimmed strings, empty as nil) plus a WKT geometry column.
func ReadShapefile(path string) (*frame.Frame, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	cols := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		cols = append(cols, strings.TrimRight(f.String(), "\x00"))
	}
	out := frame.New(model.LevelNone, append(cols, frame.GeometryColumn)...)

	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		g := FromShape(shape)
		if g == nil {
			skipped++
			continue
		}
		text, err := FormatWKT(g)
		if err != nil {
			skipped++
			continue
		}
		row := make([]any, 0, len(cols)+1)
		for i := range fields {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val == "" {
				row = append(row, nil)
			} else {
				row = append(row, val)
			}
		}
		if err := out.Append(append(row, text)...); err != nil {
			return nil, err
		}
	}

	if skipped > 0 {
		zap.L().Debug("spatial: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

// FromShape converts a go-shp geometry. Polygon parts wound clockwise start a
// new polygon; counter-clockwise parts are holes of the preceding one.
// Returns nil for unsupported or empty shapes.
func FromShape(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.Polygon:
		return polygonFromShape(s)
	}
	return nil
}

func polygonFromShape(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	mp := geom.NewMultiPolygon(geom.XY)
	var cur *geom.Polygon
	flush := func() {
		if cur != nil && cur.NumLinearRings() > 0 {
			if err := mp.Push(cur); err != nil {
				zap.L().Debug("spatial: skipping malformed polygon", zap.Error(err))
			}
		}
	}
	for i := int32(0); i < p.NumParts; i++ {
		start, end := p.Parts[i], int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		pts := make([]point, 0, end-start)
		for j := start; j < end; j++ {
			pts = append(pts, point{p.Points[j].X, p.Points[j].Y})
		}
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) < 3 {
			continue
		}
		ring := geom.NewLinearRingFlat(geom.XY, closed(pts))
		if signedArea(pts) <= 0 || cur == nil {
			flush()
			cur = geom.NewPolygon(geom.XY)
		}
		if err := cur.Push(ring); err != nil {
			zap.L().Debug("spatial: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// ToShape converts a polygonal geometry into a shapefile polygon with shells
// wound clockwise and holes counter-clockwise.
func ToShape(g geom.T) (*shp.Polygon, error) {
	polys, err := Polygons(g)
	if err != nil {
		return nil, err
	}
	var parts [][]shp.Point
	for _, p := range polys {
		for i := 0; i < p.NumLinearRings(); i++ {
			pts := ringPoints(p.LinearRing(i))
			if len(pts) < 3 {
				continue
			}
			if a := signedArea(pts); (i == 0 && a > 0) || (i > 0 && a < 0) {
				pts = reversed(pts)
			}
			part := make([]shp.Point, 0, len(pts)+1)
			for _, pt := range pts {
				part = append(part, shp.Point{X: pt[0], Y: pt[1]})
			}
			parts = append(parts, append(part, part[0]))
		}
	}
	if len(parts) == 0 {
		return nil, eris.New("spatial: empty polygon")
	}
	poly := shp.Polygon(*shp.NewPolyLine(parts))
	return &poly, nil
}
