package region

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
)

// keyLevels are probed finest first when a frame carries no level tag.
var keyLevels = []model.Level{model.LevelBlock, model.LevelTract, model.LevelCounty}

// DetectLevel returns the frame's level, or the finest key column present
// when the frame is untagged.
func DetectLevel(f *frame.Frame) (model.Level, error) {
	if f.Level != model.LevelNone && f.Has(f.Level.Key()) {
		return f.Level, nil
	}
	for _, l := range keyLevels {
		if f.Has(l.Key()) {
			return l, nil
		}
	}
	return model.LevelNone, &GeometryResolutionError{Columns: append([]string(nil), f.Columns...)}
}

// AddGeometry returns a copy of f with a WKT geometry column joined on its
// geographic key. When the boundaries of f's own level cannot be read, the
// containing level is tried, deriving its key by prefix truncation and
// adding that key column. A frame that already has geometry is returned
// unchanged.
func (r *Region) AddGeometry(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if f.HasGeometry() {
		return f, nil
	}
	level, err := DetectLevel(f)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("component", "region.geometry"), zap.String("region", r.Name))

	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	var lastErr error
	for target := level; target != model.LevelNone; target = target.Parent() {
		ref, err := run(ctx, conn, hazard.Geometry[target], r.params())
		if err == nil && ref.Len() == 0 {
			err = eris.Errorf("region: no %s boundaries", target)
		}
		if err != nil {
			log.Warn("geometry unavailable, trying containing level",
				zap.String("level", target.String()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		return joinGeometry(f, level, target, ref), nil
	}
	return nil, eris.Wrapf(lastErr, "region: resolve %s geometry", level)
}

// joinGeometry attaches ref (keyed at target) to f (keyed at level).
func joinGeometry(f *frame.Frame, level, target model.Level, ref *frame.Frame) *frame.Frame {
	refKey := target.Key()
	byID := make(map[string]int, ref.Len())
	for i := 0; i < ref.Len(); i++ {
		byID[frame.Format(ref.Value(i, refKey))] = i
	}

	out := f.Clone()
	out.Level = level
	key := level.Key()
	ids := make([]string, out.Len())
	for i := range ids {
		ids[i] = level.Truncate(frame.Format(out.Value(i, key)), target)
	}
	lookup := func(col string) func(i int) any {
		return func(i int) any {
			j, ok := byID[ids[i]]
			if !ok {
				return nil
			}
			return ref.Value(j, col)
		}
	}

	if target != level && !out.Has(refKey) {
		out.AddColumn(refKey, func(i int) any {
			if ids[i] == "" {
				return nil
			}
			return ids[i]
		})
	}
	for _, col := range ref.Columns {
		if col == refKey || col == frame.GeometryColumn || out.Has(col) {
			continue
		}
		out.AddColumn(col, lookup(col))
	}
	out.AddColumn(frame.GeometryColumn, lookup(frame.GeometryColumn))
	return out
}
