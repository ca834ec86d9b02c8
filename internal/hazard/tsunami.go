package hazard

import "github.com/sells-group/hazus-cli/internal/model"

// Tsunami results are block-level for the region's single inundation
// scenario. Casualties use the fair-evacuation estimates.
func init() {
	register(&Variant{
		Hazard: model.HazardTsunami,
		Level:  model.LevelBlock,
		Metrics: map[model.Metric]Template{
			model.MetricEconomicLoss: {
				Level:   model.LevelBlock,
				Columns: []string{"EconLoss"},
				SQL: mustSQL("tsunami_economic_loss", `
SELECT CensusBlock AS {{.Q "block"}},
	{{.Scale "SUM(TotalLoss)"}} AS {{.Q "EconLoss"}}
FROM {{.Table "tsuvResDelKTotB"}}
GROUP BY CensusBlock`),
			},
			model.MetricDamageByGeography: {
				Level:   model.LevelBlock,
				Columns: damageColumns,
				SQL: mustSQL("tsunami_damage_by_geography", `
SELECT CensusBlock AS {{.Q "block"}},
	SUM(COALESCE(Slight, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(Moderate, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(Extensive, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(Complete, 0)) AS {{.Q "Destroyed"}}
FROM {{.Table "tsuvBldgDmgB"}}
GROUP BY CensusBlock`),
			},
			model.MetricDamageByOccupancy: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByOccupancy],
				SQL: mustSQL("tsunami_damage_by_occupancy", `
SELECT Occupancy AS {{.Q "Occupancy"}},
	SUM(COALESCE(NoDamage, 0) + COALESCE(Slight, 0) + COALESCE(Moderate, 0) + COALESCE(Extensive, 0) + COALESCE(Complete, 0)) AS {{.Q "Total"}},
	SUM(COALESCE(Slight, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(Moderate, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(Extensive, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(Complete, 0)) AS {{.Q "Destroyed"}}
FROM {{.Table "tsuvBldgDmgB"}}
GROUP BY Occupancy`),
			},
			model.MetricDamageByType: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByType],
				SQL: mustSQL("tsunami_damage_by_type", `
SELECT BldgType AS {{.Q "BuildingType"}},
	SUM(COALESCE(NoDamage, 0) + COALESCE(Slight, 0) + COALESCE(Moderate, 0) + COALESCE(Extensive, 0) + COALESCE(Complete, 0)) AS {{.Q "Total"}},
	SUM(COALESCE(Slight, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(Moderate, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(Extensive, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(Complete, 0)) AS {{.Q "Destroyed"}}
FROM {{.Table "tsuvBldgDmgB"}}
GROUP BY BldgType`),
			},
			model.MetricInjuries: {
				Level:   model.LevelBlock,
				Columns: []string{"Injuries_Day", "Injuries_Night"},
				SQL: mustSQL("tsunami_injuries", `
SELECT CensusBlock AS {{.Q "block"}},
	SUM(COALESCE(InjuryDayFair, 0)) AS {{.Q "Injuries_Day"}},
	SUM(COALESCE(InjuryNightFair, 0)) AS {{.Q "Injuries_Night"}}
FROM {{.Table "tsuvCasualtyB"}}
GROUP BY CensusBlock`),
			},
			model.MetricFatalities: {
				Level:   model.LevelBlock,
				Columns: []string{"Fatalities_Day", "Fatalities_Night"},
				SQL: mustSQL("tsunami_fatalities", `
SELECT CensusBlock AS {{.Q "block"}},
	SUM(COALESCE(FatalityDayFair, 0)) AS {{.Q "Fatalities_Day"}},
	SUM(COALESCE(FatalityNightFair, 0)) AS {{.Q "Fatalities_Night"}}
FROM {{.Table "tsuvCasualtyB"}}
GROUP BY CensusBlock`),
			},
			model.MetricDemographics: demographicsTemplate(model.LevelBlock),
			model.MetricTravelTimeToSafety: {
				Level:   model.LevelBlock,
				Columns: MetricColumns[model.MetricTravelTimeToSafety],
				SQL: mustSQL("tsunami_travel_time_to_safety", `
SELECT CensusBlock AS {{.Q "block"}},
	SUM(COALESCE(Population, 0)) AS {{.Q "Population"}},
	MAX(TravelTimeSlow) AS {{.Q "TravelTimeSlow"}},
	MAX(TravelTimeModerate) AS {{.Q "TravelTimeModerate"}},
	MAX(TravelTimeFast) AS {{.Q "TravelTimeFast"}}
FROM {{.Table "tsTravelTime"}}
GROUP BY CensusBlock`),
			},
		},
		Scenarios: mustSQL("tsunami_scenarios", `
SELECT DISTINCT ScenarioName AS {{.Q "Scenario"}} FROM {{.Table "tsScenario"}}`),
		FallbackScenario:      true,
		FallbackReturnPeriods: []string{model.ReturnPeriodDeterministic},
	})
}
