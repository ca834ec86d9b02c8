package hazard

import "github.com/sells-group/hazus-cli/internal/model"

// Damage states are reported in the FEMA individual-assistance bands.
var damageColumns = []string{"Affected", "Minor", "Major", "Destroyed"}

// MetricColumns is the canonical measure set per metric, used to shape the
// empty frame of a metric a hazard does not model.
var MetricColumns = map[model.Metric][]string{
	model.MetricEconomicLoss:        {"EconLoss"},
	model.MetricDamageByGeography:   damageColumns,
	model.MetricDamageByOccupancy:   append([]string{"Occupancy", "Total"}, damageColumns...),
	model.MetricDamageByType:        append([]string{"BuildingType", "Total"}, damageColumns...),
	model.MetricInjuries:            {"Injuries_Day", "Injuries_Night"},
	model.MetricFatalities:          {"Fatalities_Day", "Fatalities_Night"},
	model.MetricDisplacedHouseholds: {"DisplacedHouseholds"},
	model.MetricShelterNeeds:        {"ShelterNeeds"},
	model.MetricDebris:              {"DebrisBW", "DebrisCS", "DebrisTree", "DebrisTotal"},
	model.MetricDemographics:        {"Population", "Households"},
	model.MetricEssentialFacilities: {"FacilityId", "FacilityType", "FacilityName", "Latitude", "Longitude", "Damage", "FunctDay1"},
	model.MetricTravelTimeToSafety:  {"Population", "TravelTimeSlow", "TravelTimeModerate", "TravelTimeFast"},
}

// demographics is shared by every hazard; the census tables differ only by level.
func demographicsTemplate(level model.Level) Template {
	table, key := "hzDemographicsT", "Tract"
	if level == model.LevelBlock {
		table, key = "hzDemographicsB", "CensusBlock"
	}
	return Template{
		Level:   level,
		Columns: MetricColumns[model.MetricDemographics],
		SQL: mustSQL("demographics_"+level.Key(), `
SELECT `+key+` AS {{.Q "`+level.Key()+`"}},
	SUM(Population) AS {{.Q "Population"}},
	SUM(Households) AS {{.Q "Households"}}
FROM {{.Table "`+table+`"}}
GROUP BY `+key),
	}
}

// facilityClasses are the Hazus essential-facility inventories.
var facilityClasses = []struct {
	Class string
	Label string
}{
	{"CareFlty", "Medical Care"},
	{"EmergencyCtr", "Emergency Center"},
	{"FireStation", "Fire Station"},
	{"PoliceStation", "Police Station"},
	{"School", "School"},
}

// facilitiesTemplate unions the per-class result tables (resultPrefix+Class)
// with their inventory (hz+Class). damage and funct are result-table columns.
func facilitiesTemplate(hazard model.Hazard, resultPrefix, damage, funct string) Template {
	text := ""
	for i, fc := range facilityClasses {
		if i > 0 {
			text += "\nUNION ALL\n"
		}
		text += `SELECT h.` + fc.Class + `Id AS {{.Q "FacilityId"}},
	'` + fc.Label + `' AS {{.Q "FacilityType"}},
	h.Name AS {{.Q "FacilityName"}},
	h.Latitude AS {{.Q "Latitude"}},
	h.Longitude AS {{.Q "Longitude"}},
	r.` + damage + ` AS {{.Q "Damage"}},
	r.` + funct + ` AS {{.Q "FunctDay1"}}
FROM {{.Table "` + resultPrefix + fc.Class + `"}} r
JOIN {{.Table "hz` + fc.Class + `"}} h ON r.` + fc.Class + `Id = h.` + fc.Class + `Id`
		if hazard == model.HazardHurricane {
			text += `
WHERE r.huScenarioName = {{.Lit .Scenario}} AND r.ReturnPeriod = {{.Lit .ReturnPeriod}}`
		}
	}
	return Template{
		Level:   model.LevelNone,
		Columns: MetricColumns[model.MetricEssentialFacilities],
		SQL:     mustSQL(string(hazard)+"_essential_facilities", text),
	}
}
