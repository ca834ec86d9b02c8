package hazard

import (
	_ "embed"
	"os"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/hazus-cli/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// LayerKind is how a surface layer is sourced.
type LayerKind string

const (
	LayerSQL    LayerKind = "sql"    // query yielding a key and PARAMVALUE
	LayerRaster LayerKind = "raster" // regular grid under the data root
	LayerVector LayerKind = "vector" // shapefile under the data root
)

// AnyReturnPeriod marks a layer that applies to every selection.
const AnyReturnPeriod = "*"

// Layer is one hazard surface candidate.
type Layer struct {
	Name         string    `yaml:"name"`
	ReturnPeriod string    `yaml:"return_period"`
	Kind         LayerKind `yaml:"kind"`
	Source       string    `yaml:"source"`
	FallbackSQL  string    `yaml:"fallback_sql"`
	Level        string    `yaml:"level"`
	Field        string    `yaml:"field"`
	Threshold    float64   `yaml:"threshold"`
	Ceiling      float64   `yaml:"ceiling"`
	Round        bool      `yaml:"round"`
	CRS          string    `yaml:"crs"`
	// Alternate layers load only when no earlier candidate for the same
	// return period produced rows.
	Alternate    bool      `yaml:"alternate"`

	name, source, fallback *template.Template
}

// Catalog holds the surface candidates per hazard.
type Catalog map[model.Hazard][]*Layer

// DefaultCatalog returns the built-in layer catalog.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file. An empty path yields the built-in catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "hazard: read catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and compiles a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	raw := map[string][]*Layer{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "hazard: parse catalog")
	}
	c := Catalog{}
	for key, layers := range raw {
		h, err := model.ParseHazard(key)
		if err != nil {
			return nil, eris.Wrap(err, "hazard: parse catalog")
		}
		for i, l := range layers {
			if err := l.compile(); err != nil {
				return nil, eris.Wrapf(err, "hazard: %s layer %d", h, i)
			}
		}
		c[h] = layers
	}
	return c, nil
}

func (l *Layer) compile() error {
	switch l.Kind {
	case LayerSQL, LayerRaster, LayerVector:
	default:
		return eris.Errorf("unknown kind %q", l.Kind)
	}
	if l.Source == "" {
		return eris.New("missing source")
	}
	l.ReturnPeriod = model.NormalizeReturnPeriod(l.ReturnPeriod)
	if l.ReturnPeriod == "" {
		l.ReturnPeriod = AnyReturnPeriod
	}
	var err error
	if l.name, err = parseText("name", l.Name); err != nil {
		return err
	}
	if l.source, err = parseText("source", l.Source); err != nil {
		return err
	}
	if l.FallbackSQL != "" {
		if l.fallback, err = parseText("fallback_sql", l.FallbackSQL); err != nil {
			return err
		}
	}
	return nil
}

func parseText(name, text string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(strings.TrimSpace(text))
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", name)
	}
	return t, nil
}

// Candidates returns the layers of h that apply to return period rp, in
// catalog order. The mixed sentinel selects the deterministic layers.
func (c Catalog) Candidates(h model.Hazard, rp string) []*Layer {
	want := model.NormalizeReturnPeriod(rp)
	if want == model.ReturnPeriodMixed {
		want = model.ReturnPeriodDeterministic
	}
	var out []*Layer
	for _, l := range c[h] {
		if l.ReturnPeriod == AnyReturnPeriod || l.ReturnPeriod == want {
			out = append(out, l)
		}
	}
	return out
}

var titler = cases.Title(language.English)

// Title renders the layer's human name for p.
func (l *Layer) Title(p Params) (string, error) {
	s, err := render(l.name, p)
	if err != nil {
		return "", err
	}
	return titler.String(strings.Join(strings.Fields(s), " ")), nil
}

// SourceText renders the layer's query or data-root relative path.
func (l *Layer) SourceText(p Params) (string, error) {
	return render(l.source, p)
}

// FallbackText renders the fallback query, or "" when the layer has none.
func (l *Layer) FallbackText(p Params) (string, error) {
	if l.fallback == nil {
		return "", nil
	}
	return render(l.fallback, p)
}

// KeyLevel is the geography a SQL-sourced layer is keyed by.
func (l *Layer) KeyLevel() model.Level {
	return model.LevelFromKey(l.Level)
}
