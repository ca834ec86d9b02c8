package hazard

import (
	"text/template"

	"github.com/sells-group/hazus-cli/internal/model"
)

// Geometry queries return every unit of one level with its boundary as WKT.
// Counties also carry their name and the state name from the system catalog.
var Geometry = map[model.Level]*template.Template{
	model.LevelBlock: mustSQL("geometry_block", `
SELECT CensusBlock AS {{.Q "block"}}, {{.WKT "Shape"}} AS {{.Q "geometry"}}
FROM {{.Table "hzCensusBlock"}}`),
	model.LevelTract: mustSQL("geometry_tract", `
SELECT Tract AS {{.Q "tract"}}, {{.WKT "Shape"}} AS {{.Q "geometry"}}
FROM {{.Table "hzTract"}}`),
	model.LevelCounty: mustSQL("geometry_county", `
SELECT c.CountyFips AS {{.Q "county"}},
	c.CountyName AS {{.Q "CountyName"}},
	s.StateName AS {{.Q "State"}},
	{{.WKT "c.Shape"}} AS {{.Q "geometry"}}
FROM {{.Table "hzCounty"}} c
LEFT JOIN {{.CatalogTable "syState"}} s ON {{.Left "c.CountyFips" 2}} = s.StateFips`),
}

// Counties lists the counties of a study region.
var Counties = mustSQL("counties", `
SELECT c.CountyFips AS {{.Q "county"}},
	c.CountyName AS {{.Q "CountyName"}},
	s.StateName AS {{.Q "State"}}
FROM {{.Table "hzCounty"}} c
LEFT JOIN {{.CatalogTable "syState"}} s ON {{.Left "c.CountyFips" 2}} = s.StateFips
ORDER BY c.CountyFips`)

// Regions reads the study-region catalog; with .Region set it is limited to
// that region.
var Regions = mustSQL("regions", `
SELECT RegionName AS {{.Q "RegionName"}},
	HasEqHazard AS {{.Q "HasEqHazard"}},
	HasFlHazard AS {{.Q "HasFlHazard"}},
	HasHuHazard AS {{.Q "HasHuHazard"}},
	HasTsHazard AS {{.Q "HasTsHazard"}}
FROM {{.CatalogTable "syStudyRegion"}}
{{- if .Region}}
WHERE RegionName = {{.Lit .Region}}
{{- end}}
ORDER BY RegionName`)

// HazardFlags maps the catalog's per-hazard flag columns.
var HazardFlags = []struct {
	Column string
	Hazard model.Hazard
}{
	{"HasEqHazard", model.HazardEarthquake},
	{"HasFlHazard", model.HazardFlood},
	{"HasHuHazard", model.HazardHurricane},
	{"HasTsHazard", model.HazardTsunami},
}
