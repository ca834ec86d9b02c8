package export

import (
	"context"
	"encoding/json"
	"os"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/spatial"
)

// ToWebVector writes f as a GeoJSON FeatureCollection in longitude/latitude.
// Every geometry is written as a MultiPolygon.
func (e *Exporter) ToWebVector(ctx context.Context, f *frame.Frame, path string) error {
	f, err := e.withGeometry(ctx, f)
	if err != nil {
		return err
	}
	feats, skipped, err := e.features(f, spatial.WGS84)
	if err != nil {
		return err
	}
	if skipped > 0 {
		zap.L().Warn("export: rows without polygon geometry left out",
			zap.String("path", path), zap.Int("skipped", skipped))
	}

	cols := attributes(f)
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(feats))}
	for _, ft := range feats {
		props := make(map[string]any, len(cols))
		for _, c := range cols {
			v := f.Value(ft.row, c)
			if frame.IsNull(v) {
				props[c] = nil
				continue
			}
			props[c] = v
		}
		fc.Features = append(fc.Features, &geojson.Feature{Geometry: ft.geom, Properties: props})
	}
	return writeJSON(path, fc)
}

// ToDissolvedWebVector unions every row into one feature, simplifies its
// boundary and writes it as GeoJSON. It is meant for overview layers.
func (e *Exporter) ToDissolvedWebVector(ctx context.Context, f *frame.Frame, path string) error {
	f, err := e.withGeometry(ctx, f)
	if err != nil {
		return err
	}
	feats, _, err := e.features(f, spatial.WGS84)
	if err != nil {
		return err
	}
	parts := make([]geom.T, len(feats))
	for i, ft := range feats {
		parts[i] = ft.geom
	}
	merged, err := spatial.Union(parts...)
	if err != nil {
		return ioError(path, "dissolve", err)
	}
	simple, err := spatial.Simplify(merged, e.opts.SimplifyTolerance)
	if err != nil {
		return ioError(path, "simplify", err)
	}

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{{
		Geometry:   simple,
		Properties: map[string]any{"features": len(feats)},
	}}}
	return writeJSON(path, fc)
}

func writeJSON(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return ioError(path, "encode", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ioError(path, "write", err)
	}
	return nil
}
