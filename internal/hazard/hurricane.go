package hazard

import "github.com/sells-group/hazus-cli/internal/model"

const hurricaneCase = `huScenarioName = {{.Lit .Scenario}} AND ReturnPeriod = {{.Lit .ReturnPeriod}}`

const hurricaneDamageBands = `SUM(COALESCE(MINOR, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(MODERATE, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(SEVERE, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(DESTRUCTION, 0)) AS {{.Q "Destroyed"}}`

const hurricaneDamageTotal = `SUM(COALESCE(NONE, 0) + COALESCE(MINOR, 0) + COALESCE(MODERATE, 0) + COALESCE(SEVERE, 0) + COALESCE(DESTRUCTION, 0)) AS {{.Q "Total"}}`

// Hurricane results are tract-level per scenario and return period. Casualties
// are not modelled for wind.
func init() {
	register(&Variant{
		Hazard: model.HazardHurricane,
		Level:  model.LevelTract,
		Metrics: map[model.Metric]Template{
			model.MetricEconomicLoss: {
				Level:   model.LevelTract,
				Columns: []string{"EconLoss"},
				SQL: mustSQL("hurricane_economic_loss", `
SELECT TRACT AS {{.Q "tract"}},
	{{.Scale "SUM(TotLoss)"}} AS {{.Q "EconLoss"}}
FROM {{.Table "huSummaryLoss"}}
WHERE `+hurricaneCase+`
GROUP BY TRACT`),
			},
			model.MetricDamageByGeography: {
				Level:   model.LevelTract,
				Columns: damageColumns,
				SQL: mustSQL("hurricane_damage_by_geography", `
SELECT Tract AS {{.Q "tract"}},
	`+hurricaneDamageBands+`
FROM {{.Table "huSummaryDamage"}}
WHERE `+hurricaneCase+`
GROUP BY Tract`),
			},
			model.MetricDamageByOccupancy: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByOccupancy],
				SQL: mustSQL("hurricane_damage_by_occupancy", `
SELECT GenBldgOrGenOcc AS {{.Q "Occupancy"}},
	`+hurricaneDamageTotal+`,
	`+hurricaneDamageBands+`
FROM {{.Table "huSummaryDamage"}}
WHERE `+hurricaneCase+`
GROUP BY GenBldgOrGenOcc`),
			},
			model.MetricDamageByType: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByType],
				SQL: mustSQL("hurricane_damage_by_type", `
SELECT BldgType AS {{.Q "BuildingType"}},
	`+hurricaneDamageTotal+`,
	`+hurricaneDamageBands+`
FROM {{.Table "huSummaryDamageBldgType"}}
WHERE `+hurricaneCase+`
GROUP BY BldgType`),
			},
			model.MetricDisplacedHouseholds: {
				Level:   model.LevelTract,
				Columns: []string{"DisplacedHouseholds"},
				SQL: mustSQL("hurricane_displaced_households", `
SELECT Tract AS {{.Q "tract"}},
	SUM(COALESCE(NumDisplacedHouseholds, 0)) AS {{.Q "DisplacedHouseholds"}}
FROM {{.Table "huShelterResultsT"}}
WHERE `+hurricaneCase+`
GROUP BY Tract`),
			},
			model.MetricShelterNeeds: {
				Level:   model.LevelTract,
				Columns: []string{"ShelterNeeds"},
				SQL: mustSQL("hurricane_shelter_needs", `
SELECT Tract AS {{.Q "tract"}},
	SUM(COALESCE(ShortTermShelter, 0)) AS {{.Q "ShelterNeeds"}}
FROM {{.Table "huShelterResultsT"}}
WHERE `+hurricaneCase+`
GROUP BY Tract`),
			},
			model.MetricDebris: {
				Level:   model.LevelTract,
				Columns: []string{"DebrisBW", "DebrisCS", "DebrisTree", "DebrisTotal"},
				SQL: mustSQL("hurricane_debris", `
SELECT Tract AS {{.Q "tract"}},
	{{.Scale "SUM(COALESCE(BRICKANDWOOD, 0))"}} AS {{.Q "DebrisBW"}},
	{{.Scale "SUM(COALESCE(CONCRETEANDSTEEL, 0))"}} AS {{.Q "DebrisCS"}},
	{{.Scale "SUM(COALESCE(Tree, 0))"}} AS {{.Q "DebrisTree"}},
	{{.Scale "SUM(COALESCE(BRICKANDWOOD, 0) + COALESCE(CONCRETEANDSTEEL, 0) + COALESCE(Tree, 0))"}} AS {{.Q "DebrisTotal"}}
FROM {{.Table "huDebrisResultsT"}}
WHERE `+hurricaneCase+`
GROUP BY Tract`),
			},
			model.MetricDemographics:        demographicsTemplate(model.LevelTract),
			model.MetricEssentialFacilities: facilitiesTemplate(model.HazardHurricane, "hu", "PDsComplete", "FunctDay1"),
		},
		Scenarios: mustSQL("hurricane_scenarios", `
SELECT DISTINCT huScenarioName AS {{.Q "Scenario"}} FROM {{.Table "huSummaryLoss"}}`),
		ReturnPeriods: mustSQL("hurricane_return_periods", `
SELECT DISTINCT ReturnPeriod AS {{.Q "ReturnPeriod"}}
FROM {{.Table "huSummaryLoss"}}
WHERE huScenarioName = {{.Lit .Scenario}}`),
	})
}
