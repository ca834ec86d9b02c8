// Package region is the study-region engine: it owns the active selection,
// runs the per-hazard metric queries and merges them, resolves geometry, and
// assembles hazard surfaces.
package region

import (
	"context"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
)

// DefaultCatalogDB is the Hazus system database holding the region catalog.
const DefaultCatalogDB = "syHazus"

// Region is one study region and its active selection. A Region is not safe
// for concurrent use; every operation opens its own store connection.
type Region struct {
	Name     string
	Database string

	connector db.Connector
	catalogDB string
	dataRoot  string
	layers    hazard.Catalog
	hazards   []model.Hazard
	sel       model.Selection
}

// Option configures a Region.
type Option func(*Region)

// WithDatabase queries database instead of the region's own name, as for a
// restored package.
func WithDatabase(name string) Option { return func(r *Region) { r.Database = name } }

// WithCatalogDB overrides the system database name.
func WithCatalogDB(name string) Option { return func(r *Region) { r.catalogDB = name } }

// WithDataRoot sets the directory holding region grids and shapefiles.
func WithDataRoot(dir string) Option { return func(r *Region) { r.dataRoot = dir } }

// WithLayers replaces the built-in hazard surface catalog.
func WithLayers(c hazard.Catalog) Option { return func(r *Region) { r.layers = c } }

// WithHazards fixes the hazards the region offers instead of reading them
// from the catalog, for databases the catalog does not list.
func WithHazards(hs ...model.Hazard) Option {
	return func(r *Region) { r.hazards = append([]model.Hazard{}, hs...) }
}

// New names an existing study region on the store behind connector.
func New(connector db.Connector, name string, opts ...Option) *Region {
	r := &Region{Name: name, Database: name, connector: connector, catalogDB: DefaultCatalogDB}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Selection returns the active hazard, scenario and return period.
func (r *Region) Selection() model.Selection { return r.sel }

func (r *Region) params() hazard.Params {
	return hazard.Params{
		Dialect:   r.connector.Dialect(),
		Database:  r.Database,
		Catalog:   r.catalogDB,
		Region:    r.Name,
		DataRoot:  r.dataRoot,
		Selection: r.sel,
	}
}

// connect opens a fresh connection for one batch of queries.
func (r *Region) connect(ctx context.Context) (db.Conn, error) {
	conn, err := r.connector.Connect(ctx, r.Database)
	if err != nil {
		return nil, eris.Wrapf(err, "region: connect %s", r.Database)
	}
	return conn, nil
}

// variant checks the selection is fully resolved and returns its hazard.
func (r *Region) variant() (*hazard.Variant, error) {
	if err := r.sel.Require(); err != nil {
		return nil, err
	}
	return hazard.Lookup(r.sel.Hazard)
}

func (r *Region) catalog() (hazard.Catalog, error) {
	if r.layers == nil {
		c, err := hazard.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		r.layers = c
	}
	return r.layers, nil
}

// run renders t for p and executes it on conn.
func run(ctx context.Context, conn db.Conn, t *template.Template, p hazard.Params) (*frame.Frame, error) {
	q, err := hazard.Render(t, p)
	if err != nil {
		return nil, err
	}
	return conn.Query(ctx, q)
}
