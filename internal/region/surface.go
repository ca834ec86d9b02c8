package region

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
	"github.com/sells-group/hazus-cli/internal/raster"
	"github.com/sells-group/hazus-cli/internal/spatial"
)

// Surface columns.
const (
	TitleColumn = "title"
	ValueColumn = "PARAMVALUE"
)

// minCellValue drops sub-unit noise when polygonizing grids.
const minCellValue = 1

// HazardSurface builds the intensity layer(s) for the active selection. Every
// catalog layer matching the return period is loaded and the results are
// stacked, each row tagged with its layer title. An alternate layer is skipped
// once an earlier layer for its return period produced rows. No matching layer
// yields an empty surface; a layer that fails to load is logged and skipped.
func (r *Region) HazardSurface(ctx context.Context) (*frame.Frame, error) {
	if err := r.sel.Require(); err != nil {
		return nil, err
	}
	layers, err := r.catalog()
	if err != nil {
		return nil, err
	}
	log := zap.L().With(
		zap.String("component", "region.surface"),
		zap.String("region", r.Name),
		zap.String("hazard", string(r.sel.Hazard)),
		zap.String("return_period", r.sel.ReturnPeriod),
	)

	candidates := layers.Candidates(r.sel.Hazard, r.sel.ReturnPeriod)
	if len(candidates) == 0 {
		log.Info("no surface layer for return period")
		return emptySurface(), nil
	}

	parts := []*frame.Frame{emptySurface()}
	loaded := map[string]bool{}
	for _, l := range candidates {
		if l.Alternate && loaded[l.ReturnPeriod] {
			log.Debug("skipping alternate surface layer", zap.String("layer", l.Name))
			continue
		}
		o := r.layer(ctx, l)
		if !o.Available() {
			log.Warn("surface layer unavailable", zap.String("layer", l.Name), zap.Error(o.Reason))
			continue
		}
		if o.Frame.Len() > 0 {
			loaded[l.ReturnPeriod] = true
		}
		parts = append(parts, o.Frame)
	}
	out := frame.Concat(parts...)
	out.Level = model.LevelNone
	return out, nil
}

func emptySurface() *frame.Frame {
	return frame.New(model.LevelNone, TitleColumn, ValueColumn, frame.GeometryColumn)
}

// layer loads one candidate and tags it with its title.
func (r *Region) layer(ctx context.Context, l *hazard.Layer) Outcome {
	p := r.params()
	title, err := l.Title(p)
	if err != nil {
		return Unavailable(err)
	}

	var f *frame.Frame
	switch l.Kind {
	case hazard.LayerSQL:
		f, err = r.sqlLayer(ctx, l, l.SourceText)
	case hazard.LayerRaster:
		f, err = r.rasterLayer(l)
	case hazard.LayerVector:
		f, err = r.vectorLayer(l)
		if err != nil && l.FallbackSQL != "" {
			zap.L().Debug("region: vector layer failed, using fallback query",
				zap.String("layer", l.Name), zap.Error(err))
			f, err = r.sqlLayer(ctx, l, l.FallbackText)
		}
	default:
		err = eris.Errorf("region: unknown layer kind %q", l.Kind)
	}
	if err != nil {
		return Unavailable(err)
	}
	f.AddColumn(TitleColumn, func(int) any { return title })
	return Ok(f)
}

// sqlLayer runs a layer query yielding a key and PARAMVALUE, then resolves
// geometry for the key.
func (r *Region) sqlLayer(ctx context.Context, l *hazard.Layer, text func(hazard.Params) (string, error)) (*frame.Frame, error) {
	q, err := text(r.params())
	if err != nil {
		return nil, err
	}
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	f, err := conn.Query(ctx, q)
	_ = conn.Close()
	if err != nil {
		return nil, err
	}
	f.Level = l.KeyLevel()
	return r.AddGeometry(ctx, f)
}

// rasterLayer reads a grid under the data root, thresholds it and traces it
// into WGS 84 polygons.
func (r *Region) rasterLayer(l *hazard.Layer) (*frame.Frame, error) {
	rel, err := l.SourceText(r.params())
	if err != nil {
		return nil, err
	}
	g, err := raster.Open(filepath.Join(r.dataRoot, rel))
	if err != nil {
		return nil, err
	}
	if l.Threshold > 0 {
		g.Clip(l.Threshold)
	}
	if l.Ceiling > 0 {
		g.Ceiling(l.Ceiling)
	}
	if l.Round {
		g.Round()
	}
	features, err := raster.Polygonize(g, minCellValue)
	if err != nil {
		return nil, err
	}
	from, err := layerCRS(l)
	if err != nil {
		return nil, err
	}

	out := frame.New(model.LevelNone, ValueColumn, frame.GeometryColumn)
	for _, feat := range features {
		geo, err := spatial.Transform(feat.Geometry, from, spatial.WGS84)
		if err != nil {
			return nil, err
		}
		text, err := spatial.FormatWKT(geo)
		if err != nil {
			return nil, err
		}
		if err := out.Append(feat.Value, text); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// vectorLayer reads a shapefile under the data root.
func (r *Region) vectorLayer(l *hazard.Layer) (*frame.Frame, error) {
	rel, err := l.SourceText(r.params())
	if err != nil {
		return nil, err
	}
	f, err := spatial.ReadShapefile(filepath.Join(r.dataRoot, rel))
	if err != nil {
		return nil, err
	}
	if l.Field != "" && l.Field != ValueColumn {
		if !f.Has(l.Field) {
			return nil, eris.Errorf("region: shapefile has no %s field", l.Field)
		}
		if err := f.Rename(l.Field, ValueColumn); err != nil {
			return nil, err
		}
	}
	if !f.Has(ValueColumn) {
		return nil, eris.Errorf("region: shapefile has no %s field", ValueColumn)
	}
	from, err := layerCRS(l)
	if err != nil {
		return nil, err
	}
	if from != spatial.WGS84 {
		for i := 0; i < f.Len(); i++ {
			g, err := spatial.ParseWKT(f.String(i, frame.GeometryColumn))
			if err != nil {
				return nil, err
			}
			if g, err = spatial.Transform(g, from, spatial.WGS84); err != nil {
				return nil, err
			}
			text, err := spatial.FormatWKT(g)
			if err != nil {
				return nil, err
			}
			f.Rows[i][f.Index(frame.GeometryColumn)] = text
		}
	}
	return f.Select(ValueColumn, frame.GeometryColumn), nil
}

func layerCRS(l *hazard.Layer) (int, error) {
	if l.CRS == "" {
		return spatial.WGS84, nil
	}
	return spatial.ParseCRS(l.CRS)
}
