// Package export serializes result tables and hazard surfaces: CSV and XLSX
// for tabular use, zipped shapefiles and GeoJSON for GIS, and a PostGIS
// table for publishing.
package export

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/spatial"
)

// DefaultSimplifyTolerance is the boundary tolerance, in degrees, applied to
// dissolved overview layers.
const DefaultSimplifyTolerance = 0.001

// GeometryResolver attaches geometry to a table keyed by a geographic level.
// *region.Region satisfies it.
type GeometryResolver interface {
	AddGeometry(ctx context.Context, f *frame.Frame) (*frame.Frame, error)
}

// ExportIOError reports an output that could not be written.
type ExportIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *ExportIOError) Error() string {
	return fmt.Sprintf("export %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ExportIOError) Unwrap() error { return e.Err }

func ioError(path, op string, err error) error {
	return &ExportIOError{Path: path, Op: op, Err: err}
}

// Options configures an Exporter.
type Options struct {
	SourceCRS         int // CRS of the table's geometry; 0 means WGS84
	TargetCRS         int // CRS of vector archives; 0 means WGS84
	SimplifyTolerance float64
}

// Exporter writes frames to files. Geometry-bearing outputs resolve missing
// geometry through the resolver first.
type Exporter struct {
	resolver GeometryResolver
	opts     Options
}

// New creates an exporter. resolver may be nil when every exported frame
// already carries geometry.
func New(resolver GeometryResolver, opts Options) *Exporter {
	if opts.SourceCRS == 0 {
		opts.SourceCRS = spatial.WGS84
	}
	if opts.TargetCRS == 0 {
		opts.TargetCRS = spatial.WGS84
	}
	if opts.SimplifyTolerance <= 0 {
		opts.SimplifyTolerance = DefaultSimplifyTolerance
	}
	return &Exporter{resolver: resolver, opts: opts}
}

// withGeometry returns f with its geometry column, resolving it when absent.
func (e *Exporter) withGeometry(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if f.HasGeometry() {
		return f, nil
	}
	if e.resolver == nil {
		return nil, eris.New("export: table has no geometry and no resolver is configured")
	}
	return e.resolver.AddGeometry(ctx, f)
}

// feature is one exportable row: its attribute values and its geometry in
// the output CRS.
type feature struct {
	row  int
	geom *geom.MultiPolygon
}

// features decodes the geometry column and reprojects it from the source CRS
// to crs. Rows without a polygonal geometry are skipped.
func (e *Exporter) features(f *frame.Frame, crs int) ([]feature, int, error) {
	var out []feature
	skipped := 0
	for i := 0; i < f.Len(); i++ {
		text := f.String(i, frame.GeometryColumn)
		if text == "" {
			skipped++
			continue
		}
		g, err := spatial.ParseWKT(text)
		if err != nil {
			skipped++
			continue
		}
		mp, err := spatial.ToMulti(g)
		if err != nil {
			skipped++
			continue
		}
		t, err := spatial.Transform(mp, e.opts.SourceCRS, crs)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, feature{row: i, geom: t.(*geom.MultiPolygon)})
	}
	return out, skipped, nil
}

// attributes lists the non-geometry columns.
func attributes(f *frame.Frame) []string {
	cols := make([]string, 0, len(f.Columns))
	for _, c := range f.Columns {
		if c != frame.GeometryColumn {
			cols = append(cols, c)
		}
	}
	return cols
}
