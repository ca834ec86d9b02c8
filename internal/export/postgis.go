package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/spatial"
)

// geometryType is the column type of published geometry.
const geometryType = "geometry(MultiPolygon, 4326)"

// ToPostGIS replaces schema.table with f's rows, geometry encoded as EWKB in
// WGS84. It returns the number of rows copied.
func (e *Exporter) ToPostGIS(ctx context.Context, pool db.Pool, f *frame.Frame, schema, table string) (int64, error) {
	f, err := e.withGeometry(ctx, f)
	if err != nil {
		return 0, err
	}
	feats, skipped, err := e.features(f, spatial.WGS84)
	if err != nil {
		return 0, err
	}

	cols := attributes(f)
	_, numeric := dbfFields(f, cols)
	defs := make([]db.ColumnDef, 0, len(cols)+1)
	for j, c := range cols {
		typ := "text"
		if numeric[j] {
			typ = "double precision"
		}
		defs = append(defs, db.ColumnDef{Name: c, Type: typ})
	}
	defs = append(defs, db.ColumnDef{Name: frame.GeometryColumn, Type: geometryType})
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}

	rows := make([][]any, 0, len(feats))
	for _, ft := range feats {
		row := make([]any, 0, len(defs))
		for j, c := range cols {
			v := f.Value(ft.row, c)
			switch {
			case frame.IsNull(v):
				row = append(row, nil)
			case numeric[j]:
				x, _ := frame.ToFloat(v)
				row = append(row, x)
			default:
				row = append(row, frame.Format(v))
			}
		}
		wkb, err := spatial.EncodeEWKB(ft.geom, spatial.WGS84)
		if err != nil {
			return 0, err
		}
		rows = append(rows, append(row, wkb))
	}

	if err := db.ReplaceTable(ctx, pool, schema, table, defs); err != nil {
		return 0, err
	}
	n, err := db.CopyFromSchema(ctx, pool, schema, table, names, rows)
	if err != nil {
		return 0, err
	}
	zap.L().Info("export: published to postgis",
		zap.String("table", schema+"."+table),
		zap.Int64("rows", n),
		zap.Int("skipped", skipped),
	)
	return n, nil
}
