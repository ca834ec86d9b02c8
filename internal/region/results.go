package region

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
)

// fetch runs one metric of v. Metrics the hazard does not model come back
// Unavailable, as do queries the store rejects.
func (r *Region) fetch(ctx context.Context, conn db.Conn, v *hazard.Variant, m model.Metric) Outcome {
	t, ok := v.Metric(m)
	if !ok {
		return Unavailable(eris.Wrapf(ErrUnavailable, "%s does not model %s", v.Hazard, m))
	}
	q, err := t.Render(r.params())
	if err != nil {
		return Unavailable(err)
	}
	f, err := conn.Query(ctx, q)
	if err != nil {
		return Unavailable(err)
	}
	f.Level = t.Level
	if key := t.Level.Key(); key != "" && f.Has(key) {
		f.AddColumn(key, func(i int) any { return frame.Format(f.Value(i, key)) })
	}
	return Ok(f)
}

// Results runs every per-geography metric for the active selection and
// merges them on the economic-loss key. Rows without economic loss and
// columns null throughout are dropped. A metric whose query fails is left
// out of the merge.
func (r *Region) Results(ctx context.Context) (*frame.Frame, error) {
	v, err := r.variant()
	if err != nil {
		return nil, err
	}
	log := zap.L().With(
		zap.String("component", "region.results"),
		zap.String("region", r.Name),
		zap.String("hazard", string(v.Hazard)),
	)

	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	level := v.MetricLevel(model.MetricEconomicLoss)
	frames := make([]*frame.Frame, 0, len(model.ResultMetrics))
	for _, m := range model.ResultMetrics {
		o := r.fetch(ctx, conn, v, m)
		switch {
		case !o.Available() && eris.Is(o.Reason, ErrUnavailable):
			frames = append(frames, v.EmptyFrame(m))
			continue
		case !o.Available():
			log.Warn("metric unavailable", zap.String("metric", string(m)), zap.Error(o.Reason))
			if m == model.MetricEconomicLoss {
				frames = append(frames, v.EmptyFrame(m))
			}
			continue
		}
		if o.Frame.Level != level {
			log.Warn("metric keyed by another level",
				zap.String("metric", string(m)),
				zap.String("level", o.Frame.Level.String()),
			)
			continue
		}
		frames = append(frames, o.Frame)
	}

	merged, err := frame.OuterJoin(level, frames...)
	if err != nil {
		return nil, eris.Wrap(err, "region: merge results")
	}
	out := merged.DropNull("EconLoss").DropEmptyColumns()
	log.Debug("results merged", zap.Int("rows", out.Len()), zap.Int("columns", len(out.Columns)))
	return out, nil
}

// summary fetches one metric on its own connection. Metrics the hazard does
// not model return an empty frame of the expected shape.
func (r *Region) summary(ctx context.Context, m model.Metric) (*frame.Frame, error) {
	v, err := r.variant()
	if err != nil {
		return nil, err
	}
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	o := r.fetch(ctx, conn, v, m)
	if !o.Available() {
		if eris.Is(o.Reason, ErrUnavailable) {
			return v.EmptyFrame(m), nil
		}
		return nil, eris.Wrapf(o.Reason, "region: %s", m)
	}
	return o.Frame, nil
}

// BuildingDamageByOccupancy summarises building damage per occupancy class.
func (r *Region) BuildingDamageByOccupancy(ctx context.Context) (*frame.Frame, error) {
	return r.summary(ctx, model.MetricDamageByOccupancy)
}

// BuildingDamageByType summarises building damage per building type.
func (r *Region) BuildingDamageByType(ctx context.Context) (*frame.Frame, error) {
	return r.summary(ctx, model.MetricDamageByType)
}

// EssentialFacilities lists damage and day-one functionality of essential
// facilities.
func (r *Region) EssentialFacilities(ctx context.Context) (*frame.Frame, error) {
	return r.summary(ctx, model.MetricEssentialFacilities)
}

// TravelTimeToSafety reports evacuation travel times. Only tsunami models it;
// other hazards return an error matching ErrUnavailable.
func (r *Region) TravelTimeToSafety(ctx context.Context) (*frame.Frame, error) {
	v, err := r.variant()
	if err != nil {
		return nil, err
	}
	if _, ok := v.Metric(model.MetricTravelTimeToSafety); !ok {
		return nil, eris.Wrapf(ErrUnavailable, "region: travel time to safety is not modelled for %s", v.Hazard)
	}
	return r.summary(ctx, model.MetricTravelTimeToSafety)
}

// Counties lists the region's counties with county and state names.
func (r *Region) Counties(ctx context.Context) (*frame.Frame, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	f, err := run(ctx, conn, hazard.Counties, r.params())
	if err != nil {
		return nil, eris.Wrap(err, "region: counties")
	}
	f.Level = model.LevelCounty
	return f, nil
}
