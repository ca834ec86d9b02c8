package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/export"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/model"
	"github.com/sells-group/hazus-cli/internal/region"
	"github.com/sells-group/hazus-cli/internal/spatial"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// safeName turns an arbitrary label into a file and table name.
func safeName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.Trim(unsafeName.ReplaceAllString(p, "_"), "_")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_")
}

// writer emits frames in every configured format.
type writer struct {
	exp     *export.Exporter
	dir     string
	formats []string
	pool    db.Pool // nil unless publishing to PostGIS
	schema  string
}

func newWriter(r *region.Region, dir string, formats []string, pool db.Pool) (*writer, error) {
	src, err := spatial.ParseCRS(cfg.Export.SourceCRS)
	if err != nil {
		return nil, err
	}
	dst, err := spatial.ParseCRS(cfg.Export.TargetCRS)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "cmd: create %s", dir)
	}
	exp := export.New(r, export.Options{
		SourceCRS:         src,
		TargetCRS:         dst,
		SimplifyTolerance: cfg.Export.SimplifyTolerance,
	})
	return &writer{exp: exp, dir: dir, formats: formats, pool: pool, schema: strings.ToLower(safeName(r.Name))}, nil
}

// spatialFrame reports whether f has or can get geometry.
func spatialFrame(f *frame.Frame) bool {
	return f.HasGeometry() || f.Level != model.LevelNone
}

// write emits f as name.<ext> per format. Every format is attempted; the
// first failure is returned.
func (w *writer) write(ctx context.Context, name string, f *frame.Frame) error {
	log := zap.L().With(zap.String("component", "cmd.export"), zap.String("artifact", name))
	base := filepath.Join(w.dir, name)

	var first error
	for _, format := range w.formats {
		var err error
		switch format {
		case "csv":
			err = w.exp.ToCSV(f, base+".csv")
		case "xlsx":
			err = w.exp.ToXLSX(f, name, base+".xlsx")
		case "shapefile":
			if !spatialFrame(f) {
				continue
			}
			_, err = w.exp.ToVectorArchive(ctx, f, base+".shp")
		case "geojson":
			if !spatialFrame(f) {
				continue
			}
			err = w.exp.ToWebVector(ctx, f, base+".geojson")
		case "postgis":
			if w.pool == nil || !spatialFrame(f) {
				continue
			}
			_, err = w.exp.ToPostGIS(ctx, w.pool, f, w.schema, strings.ToLower(name))
		default:
			err = eris.Errorf("cmd: unknown format %q", format)
		}
		if err != nil {
			log.Error("export failed", zap.String("format", format), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// extent writes the dissolved outline of f as name_extent.geojson when
// GeoJSON output is enabled.
func (w *writer) extent(ctx context.Context, name string, f *frame.Frame) error {
	for _, format := range w.formats {
		if format == "geojson" {
			return w.exp.ToDissolvedWebVector(ctx, f, filepath.Join(w.dir, name+"_extent.geojson"))
		}
	}
	return nil
}

// artifact is one independently exported output of a selection.
type artifact struct {
	name  string
	build func(ctx context.Context) (*frame.Frame, error)
}

func artifacts(r *region.Region, summaries, surface bool) []artifact {
	out := []artifact{{"results", r.Results}}
	if surface {
		out = append(out, artifact{"hazard", r.HazardSurface})
	}
	if summaries {
		out = append(out,
			artifact{"damage_by_occupancy", r.BuildingDamageByOccupancy},
			artifact{"damage_by_type", r.BuildingDamageByType},
			artifact{"essential_facilities", r.EssentialFacilities},
			artifact{"counties", r.Counties},
		)
		if r.Selection().Hazard == model.HazardTsunami {
			out = append(out, artifact{"travel_time", r.TravelTimeToSafety})
		}
	}
	return out
}

// exportSelection writes the artifacts of r's current selection. A failed
// artifact is logged and counted and the rest still run.
func exportSelection(ctx context.Context, r *region.Region, w *writer, summaries, surface bool) (written, failed int) {
	sel := r.Selection()
	prefix := safeName(r.Name, string(sel.Hazard), sel.Scenario, sel.ReturnPeriod)
	log := zap.L().With(zap.String("region", r.Name), zap.String("hazard", string(sel.Hazard)))

	for _, a := range artifacts(r, summaries, surface) {
		if ctx.Err() != nil {
			return written, failed
		}
		name := prefix + "_" + a.name
		f, err := a.build(ctx)
		if err == nil {
			err = w.write(ctx, name, f)
			if err == nil && a.name == "results" && f.Len() > 0 {
				err = w.extent(ctx, name, f)
			}
		}
		if err != nil {
			failed++
			if skippable(err) {
				log.Warn("artifact skipped", zap.String("artifact", a.name), zap.Error(err))
				continue
			}
			log.Error("artifact failed", zap.String("artifact", a.name), zap.Error(err))
			continue
		}
		written++
	}
	return written, failed
}

// skippable reports the failures expected in a batch: rejected queries,
// unwritable outputs and metrics the hazard does not model.
func skippable(err error) bool {
	var qe *db.QueryExecutionError
	var ee *export.ExportIOError
	return errors.As(err, &qe) || errors.As(err, &ee) || errors.Is(err, region.ErrUnavailable)
}

// publishPool opens the PostGIS target when the postgis format is enabled.
// The returned close func is never nil.
func publishPool(ctx context.Context, formats []string) (db.Pool, func(), error) {
	noop := func() {}
	enabled := false
	for _, f := range formats {
		enabled = enabled || f == "postgis"
	}
	if !enabled {
		return nil, noop, nil
	}
	if err := cfg.Validate("publish"); err != nil {
		return nil, noop, err
	}
	pc, err := db.NewPostgres(cfg.Export.PostGISURL, queryTimeout())
	if err != nil {
		return nil, noop, err
	}
	conn, err := pc.Connect(ctx, "")
	if err != nil {
		return nil, noop, err
	}
	pg, ok := conn.(*db.PostgresConn)
	if !ok {
		_ = conn.Close()
		return nil, noop, eris.New("cmd: postgis target is not a postgres connection")
	}
	return pg.Pool(), func() { _ = conn.Close() }, nil
}
