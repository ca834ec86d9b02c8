package region

import (
	"context"
	"text/template"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
)

// SetHazard activates h, or the first hazard the region was analysed for
// when h is empty. Any scenario and return period are cleared.
func (r *Region) SetHazard(ctx context.Context, h model.Hazard) error {
	options, err := r.Hazards(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = string(o)
	}
	chosen, err := choose("hazard", string(h), names, normHazard)
	if err != nil {
		return err
	}
	r.sel = model.Selection{Hazard: model.Hazard(chosen)}
	return nil
}

// SetScenario activates scenario s of the active hazard, or the first one
// when s is empty. The return period is cleared.
func (r *Region) SetScenario(ctx context.Context, s string) error {
	options, err := r.Scenarios(ctx)
	if err != nil {
		return err
	}
	chosen, err := choose("scenario", s, options, func(v string) string { return v })
	if err != nil {
		return err
	}
	r.sel.Scenario = chosen
	r.sel.ReturnPeriod = ""
	return nil
}

// SetReturnPeriod activates return period rp of the active scenario, or the
// first one when rp is empty. Return periods compare trimmed and
// case-insensitively; the store's own spelling is kept.
func (r *Region) SetReturnPeriod(ctx context.Context, rp string) error {
	options, err := r.ReturnPeriods(ctx)
	if err != nil {
		return err
	}
	chosen, err := choose("return period", rp, options, model.NormalizeReturnPeriod)
	if err != nil {
		return err
	}
	r.sel.ReturnPeriod = chosen
	return nil
}

// Select resolves hazard, scenario and return period in order; empty values
// default.
func (r *Region) Select(ctx context.Context, sel model.Selection) error {
	if err := r.SetHazard(ctx, sel.Hazard); err != nil {
		return err
	}
	if err := r.SetScenario(ctx, sel.Scenario); err != nil {
		return err
	}
	return r.SetReturnPeriod(ctx, sel.ReturnPeriod)
}

func normHazard(s string) string {
	if h, err := model.ParseHazard(s); err == nil {
		return string(h)
	}
	return s
}

// choose validates value against options, or defaults to the first option.
func choose(field, value string, options []string, norm func(string) string) (string, error) {
	log := zap.L().With(zap.String("component", "region.selection"))
	if value == "" {
		if len(options) == 0 {
			return "", eris.Errorf("region: no %s available", field)
		}
		if len(options) > 1 {
			log.Info("defaulting to first option",
				zap.String("field", field),
				zap.String("value", options[0]),
				zap.Int("options", len(options)),
			)
		}
		return options[0], nil
	}
	want := norm(value)
	for _, o := range options {
		if norm(o) == want {
			return o, nil
		}
	}
	return "", &model.InvalidSelectionError{Field: field, Value: value, Options: options}
}

// Scenarios lists the scenarios of the active hazard.
func (r *Region) Scenarios(ctx context.Context) ([]string, error) {
	if r.sel.Hazard == "" {
		return nil, eris.New("region: no active hazard")
	}
	v, err := hazard.Lookup(r.sel.Hazard)
	if err != nil {
		return nil, err
	}
	options, err := r.options(ctx, v, v.Scenarios)
	if err != nil && !v.FallbackScenario {
		return nil, err
	}
	if len(options) == 0 && v.FallbackScenario {
		options = []string{r.Name}
	}
	return options, nil
}

// ReturnPeriods lists the return periods of the active scenario.
func (r *Region) ReturnPeriods(ctx context.Context) ([]string, error) {
	if r.sel.Hazard == "" || r.sel.Scenario == "" {
		return nil, eris.New("region: return periods need an active hazard and scenario")
	}
	v, err := hazard.Lookup(r.sel.Hazard)
	if err != nil {
		return nil, err
	}
	options, err := r.options(ctx, v, v.ReturnPeriods)
	if err != nil && len(v.FallbackReturnPeriods) == 0 {
		return nil, err
	}
	if len(options) == 0 {
		options = append(options, v.FallbackReturnPeriods...)
	}
	return options, nil
}

// options runs an option query and returns the distinct non-empty values of
// its first column in store order. A query failure is logged and returned.
func (r *Region) options(ctx context.Context, v *hazard.Variant, t *template.Template) ([]string, error) {
	if t == nil {
		return nil, nil
	}
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	f, err := run(ctx, conn, t, r.params())
	if err != nil {
		zap.L().With(zap.String("component", "region.selection")).Warn("option query failed",
			zap.String("hazard", string(v.Hazard)),
			zap.String("query", t.Name()),
			zap.Error(err),
		)
		return nil, err
	}
	return distinctFirst(f), nil
}

func distinctFirst(f *frame.Frame) []string {
	var out []string
	seen := map[string]bool{}
	for _, row := range f.Rows {
		if len(row) == 0 {
			continue
		}
		s := frame.Format(row[0])
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
