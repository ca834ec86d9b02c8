package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Hazard is the peril a study region was analysed for.
type Hazard string

const (
	HazardEarthquake Hazard = "earthquake"
	HazardFlood      Hazard = "flood"
	HazardHurricane  Hazard = "hurricane"
	HazardTsunami    Hazard = "tsunami"
)

// Hazards lists every supported hazard in catalog order.
var Hazards = []Hazard{HazardEarthquake, HazardFlood, HazardHurricane, HazardTsunami}

// ParseHazard accepts the canonical name or the two-letter Hazus prefix (eq, fl, hu, ts).
func ParseHazard(s string) (Hazard, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "earthquake", "eq":
		return HazardEarthquake, nil
	case "flood", "fl":
		return HazardFlood, nil
	case "hurricane", "hu":
		return HazardHurricane, nil
	case "tsunami", "ts":
		return HazardTsunami, nil
	}
	return "", eris.Errorf("model: unknown hazard %q", s)
}

// Prefix returns the Hazus table prefix for the hazard.
func (h Hazard) Prefix() string {
	switch h {
	case HazardEarthquake:
		return "eq"
	case HazardFlood:
		return "fl"
	case HazardHurricane:
		return "hu"
	case HazardTsunami:
		return "ts"
	}
	return ""
}

func (h Hazard) String() string { return string(h) }
