package region

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
)

// Info is one study region listed in the store catalog.
type Info struct {
	Name    string
	Hazards []model.Hazard
}

// ListRegions reads every study region from the catalog database.
func ListRegions(ctx context.Context, connector db.Connector, catalogDB string) ([]Info, error) {
	if catalogDB == "" {
		catalogDB = DefaultCatalogDB
	}
	return listRegions(ctx, connector, hazard.Params{
		Dialect: connector.Dialect(),
		Catalog: catalogDB,
	})
}

func listRegions(ctx context.Context, connector db.Connector, p hazard.Params) ([]Info, error) {
	conn, err := connector.Connect(ctx, p.Catalog)
	if err != nil {
		return nil, eris.Wrapf(err, "region: connect %s", p.Catalog)
	}
	defer func() { _ = conn.Close() }()

	f, err := run(ctx, conn, hazard.Regions, p)
	if err != nil {
		return nil, eris.Wrap(err, "region: list regions")
	}
	out := make([]Info, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		info := Info{Name: strings.TrimSpace(f.String(i, "RegionName"))}
		for _, flag := range hazard.HazardFlags {
			if truthy(f.Value(i, flag.Column)) {
				info.Hazards = append(info.Hazards, flag.Hazard)
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// Hazards reports which hazards the region was analysed for, in catalog order.
func (r *Region) Hazards(ctx context.Context) ([]model.Hazard, error) {
	if r.hazards != nil {
		return r.hazards, nil
	}
	p := r.params()
	p.Database = r.catalogDB
	regions, err := listRegions(ctx, r.connector, p)
	if err != nil {
		return nil, err
	}
	for _, info := range regions {
		if strings.EqualFold(info.Name, r.Name) {
			return info.Hazards, nil
		}
	}
	return nil, eris.Errorf("region: %s not found in %s", r.Name, r.catalogDB)
}

// truthy reads a catalog flag stored as bit, integer or text.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "t", "y", "yes":
			return true
		}
		return false
	}
	n, ok := frame.ToFloat(v)
	return ok && n != 0
}
