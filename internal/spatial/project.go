package spatial

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Supported coordinate reference systems.
const (
	WGS84        = 4326 // geographic, WGS 84
	NAD83        = 4269 // geographic, NAD 83 (Hazus native)
	WebMercator  = 3857 // spherical mercator
	earthRadius  = 6378137.0
	maxMercatorY = 85.05112878
)

// ParseCRS accepts "EPSG:4326", "epsg:4326" or "4326".
func ParseCRS(s string) (int, error) {
	code := strings.TrimSpace(s)
	if i := strings.IndexByte(code, ':'); i >= 0 {
		if !strings.EqualFold(code[:i], "epsg") {
			return 0, eris.Errorf("spatial: unsupported CRS authority %q", s)
		}
		code = code[i+1:]
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, eris.Wrapf(err, "spatial: parse CRS %q", s)
	}
	switch n {
	case WGS84, NAD83, WebMercator:
		return n, nil
	}
	return 0, eris.Errorf("spatial: unsupported CRS EPSG:%d", n)
}

func geographic(epsg int) bool { return epsg == WGS84 || epsg == NAD83 }

// Transform reprojects g between supported systems. NAD 83 and WGS 84 are
// treated as coincident; their sub-metre datum shift is below the
// resolution of Hazus outputs.
func Transform(g geom.T, from, to int) (geom.T, error) {
	var fn func(x, y float64) (float64, float64)
	switch {
	case from == to, geographic(from) && geographic(to):
		return cloneGeom(g)
	case geographic(from) && to == WebMercator:
		fn = toMercator
	case from == WebMercator && geographic(to):
		fn = fromMercator
	default:
		return nil, eris.Errorf("spatial: no transform EPSG:%d -> EPSG:%d", from, to)
	}
	c, err := cloneGeom(g)
	if err != nil {
		return nil, err
	}
	flat, stride := c.FlatCoords(), c.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		flat[i], flat[i+1] = fn(flat[i], flat[i+1])
	}
	return c, nil
}

func cloneGeom(g geom.T) (geom.T, error) {
	switch t := g.(type) {
	case *geom.Point:
		return t.Clone(), nil
	case *geom.LineString:
		return t.Clone(), nil
	case *geom.MultiLineString:
		return t.Clone(), nil
	case *geom.Polygon:
		return t.Clone(), nil
	case *geom.MultiPolygon:
		return t.Clone(), nil
	}
	return nil, eris.Errorf("spatial: cannot transform %T", g)
}

func toMercator(lon, lat float64) (float64, float64) {
	lat = math.Max(-maxMercatorY, math.Min(maxMercatorY, lat))
	x := earthRadius * lon * math.Pi / 180
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

func fromMercator(x, y float64) (float64, float64) {
	lon := x / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

// PRJ returns the ESRI projection text written beside a shapefile.
func PRJ(epsg int) (string, error) {
	switch epsg {
	case WGS84:
		return `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`, nil
	case NAD83:
		return `GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`, nil
	case WebMercator:
		return `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Mercator_Auxiliary_Sphere"],PARAMETER["False_Easting",0.0],PARAMETER["False_Northing",0.0],PARAMETER["Central_Meridian",0.0],PARAMETER["Standard_Parallel_1",0.0],PARAMETER["Auxiliary_Sphere_Type",0.0],UNIT["Meter",1.0]]`, nil
	}
	return "", eris.Errorf("spatial: no projection text for EPSG:%d", epsg)
}
