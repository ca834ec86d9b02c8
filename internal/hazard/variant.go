// Package hazard is the per-hazard query dispatcher. Each hazard registers one
// Variant: its native geography, a template per metric, the option queries
// the selection state machine validates against, and its surface layers.
package hazard

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/model"
)

// Dollar and tonnage measures are stored in thousands.
const unitScale = 1000

// Template is one cell of the hazard x metric table.
type Template struct {
	Level   model.Level // key the query groups by; LevelNone for summaries
	Columns []string    // measure columns the query yields, key excluded
	SQL     *template.Template
}

// Render produces the query text for p.
func (t Template) Render(p Params) (string, error) {
	return render(t.SQL, p)
}

// Variant describes everything hazard-specific about a study region.
type Variant struct {
	Hazard model.Hazard
	Level  model.Level

	Metrics map[model.Metric]Template

	// Scenarios lists scenario names; ReturnPeriods lists return periods for
	// .Scenario. When a query yields nothing the fallback applies.
	Scenarios             *template.Template
	ReturnPeriods         *template.Template
	FallbackScenario      bool
	FallbackReturnPeriods []string
}

// Metric returns the template for m, or false when the hazard does not
// model it.
func (v *Variant) Metric(m model.Metric) (Template, bool) {
	t, ok := v.Metrics[m]
	return t, ok
}

// MetricLevel is the key a metric's frame carries, supported or not.
func (v *Variant) MetricLevel(m model.Metric) model.Level {
	if t, ok := v.Metrics[m]; ok {
		return t.Level
	}
	switch m {
	case model.MetricDamageByOccupancy, model.MetricDamageByType, model.MetricEssentialFacilities:
		return model.LevelNone
	}
	return v.Level
}

// EmptyFrame returns the zero-row frame shaped like metric m's output so that
// unsupported metrics still merge cleanly.
func (v *Variant) EmptyFrame(m model.Metric) *frame.Frame {
	level := v.MetricLevel(m)
	var cols []string
	if key := level.Key(); key != "" {
		cols = append(cols, key)
	}
	if t, ok := v.Metrics[m]; ok {
		cols = append(cols, t.Columns...)
	} else {
		cols = append(cols, MetricColumns[m]...)
	}
	return frame.New(level, cols...)
}

var registry = map[model.Hazard]*Variant{}

func register(v *Variant) {
	registry[v.Hazard] = v
}

// Lookup returns the variant for h.
func Lookup(h model.Hazard) (*Variant, error) {
	v, ok := registry[h]
	if !ok {
		return nil, eris.Errorf("hazard: no variant registered for %q", h)
	}
	return v, nil
}

// Params is the data every query and path template is rendered with.
type Params struct {
	Dialect  db.Dialect
	Database string // study-region database
	Catalog  string // Hazus system database holding the region catalog and state names
	Region   string // study-region name as listed in the catalog
	DataRoot string // directory holding region grids and shapefiles
	model.Selection
}

// Table references a table in the study-region database.
func (p Params) Table(name string) string { return p.Dialect.Table(p.Database, name) }

// CatalogTable references a table in the system database.
func (p Params) CatalogTable(name string) string { return p.Dialect.Table(p.Catalog, name) }

// Q quotes an output alias so it keeps its case on every store.
func (p Params) Q(ident string) string { return p.Dialect.Quote(ident) }

// Lit renders a string literal.
func (p Params) Lit(s string) string { return p.Dialect.Literal(s) }

// WKT renders a geometry-to-text expression.
func (p Params) WKT(col string) string { return p.Dialect.WKT(col) }

// Left renders a prefix expression.
func (p Params) Left(expr string, n int) string { return p.Dialect.Left(expr, n) }

// Scale multiplies expr by the stored-in-thousands factor.
func (p Params) Scale(expr string) string { return "(" + expr + ") * " + strconv.Itoa(unitScale) }

func mustSQL(name, text string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=error").Parse(strings.TrimSpace(text)))
}

func render(t *template.Template, p Params) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, p); err != nil {
		return "", eris.Wrapf(err, "hazard: render %s", t.Name())
	}
	return b.String(), nil
}

// Render renders an option query (scenarios or return periods) for p.
func Render(t *template.Template, p Params) (string, error) {
	if t == nil {
		return "", nil
	}
	return render(t, p)
}
