package hazard

import "github.com/sells-group/hazus-cli/internal/model"

// Earthquake results are tract-level and cover the region's single active
// scenario, so the result tables carry no scenario or return-period column.
func init() {
	register(&Variant{
		Hazard: model.HazardEarthquake,
		Level:  model.LevelTract,
		Metrics: map[model.Metric]Template{
			model.MetricEconomicLoss: {
				Level:   model.LevelTract,
				Columns: []string{"EconLoss"},
				SQL: mustSQL("earthquake_economic_loss", `
SELECT Tract AS {{.Q "tract"}},
	{{.Scale "SUM(TotalLoss)"}} AS {{.Q "EconLoss"}}
FROM {{.Table "eqTractEconLoss"}}
GROUP BY Tract`),
			},
			model.MetricDamageByGeography: {
				Level:   model.LevelTract,
				Columns: damageColumns,
				SQL: mustSQL("earthquake_damage_by_geography", `
SELECT Tract AS {{.Q "tract"}},
	SUM(COALESCE(PDsSlightBC, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(PDsModerateBC, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(PDsExtensiveBC, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(PDsCompleteBC, 0)) AS {{.Q "Destroyed"}}
FROM {{.Table "eqTractDmg"}}
WHERE DmgMechanism = 'STR'
GROUP BY Tract`),
			},
			model.MetricDamageByOccupancy: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByOccupancy],
				SQL: mustSQL("earthquake_damage_by_occupancy", `
SELECT Occupancy AS {{.Q "Occupancy"}},
	SUM(COALESCE(PDsNoneBC, 0) + COALESCE(PDsSlightBC, 0) + COALESCE(PDsModerateBC, 0) + COALESCE(PDsExtensiveBC, 0) + COALESCE(PDsCompleteBC, 0)) AS {{.Q "Total"}},
	SUM(COALESCE(PDsSlightBC, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(PDsModerateBC, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(PDsExtensiveBC, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(PDsCompleteBC, 0)) AS {{.Q "Destroyed"}}
FROM {{.Table "eqTractDmg"}}
WHERE DmgMechanism = 'STR'
GROUP BY Occupancy`),
			},
			model.MetricDamageByType: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByType],
				SQL: mustSQL("earthquake_damage_by_type", `
SELECT eqBldgType AS {{.Q "BuildingType"}},
	SUM(COALESCE(PDsNoneBC, 0) + COALESCE(PDsSlightBC, 0) + COALESCE(PDsModerateBC, 0) + COALESCE(PDsExtensiveBC, 0) + COALESCE(PDsCompleteBC, 0)) AS {{.Q "Total"}},
	SUM(COALESCE(PDsSlightBC, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(PDsModerateBC, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(PDsExtensiveBC, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(PDsCompleteBC, 0)) AS {{.Q "Destroyed"}}
FROM {{.Table "eqTractDmgBldgType"}}
GROUP BY eqBldgType`),
			},
			model.MetricInjuries: {
				Level:   model.LevelTract,
				Columns: []string{"Injuries_Day", "Injuries_Night"},
				SQL: mustSQL("earthquake_injuries", `
SELECT d.Tract AS {{.Q "tract"}},
	d.Injuries AS {{.Q "Injuries_Day"}},
	n.Injuries AS {{.Q "Injuries_Night"}}
FROM (
	SELECT Tract, SUM(COALESCE(Level1Injury, 0) + COALESCE(Level2Injury, 0) + COALESCE(Level3Injury, 0)) AS Injuries
	FROM {{.Table "eqTractCasDay"}} GROUP BY Tract
) d
LEFT JOIN (
	SELECT Tract, SUM(COALESCE(Level1Injury, 0) + COALESCE(Level2Injury, 0) + COALESCE(Level3Injury, 0)) AS Injuries
	FROM {{.Table "eqTractCasNight"}} GROUP BY Tract
) n ON d.Tract = n.Tract`),
			},
			model.MetricFatalities: {
				Level:   model.LevelTract,
				Columns: []string{"Fatalities_Day", "Fatalities_Night"},
				SQL: mustSQL("earthquake_fatalities", `
SELECT d.Tract AS {{.Q "tract"}},
	d.Fatalities AS {{.Q "Fatalities_Day"}},
	n.Fatalities AS {{.Q "Fatalities_Night"}}
FROM (
	SELECT Tract, SUM(COALESCE(Level4Injury, 0)) AS Fatalities
	FROM {{.Table "eqTractCasDay"}} GROUP BY Tract
) d
LEFT JOIN (
	SELECT Tract, SUM(COALESCE(Level4Injury, 0)) AS Fatalities
	FROM {{.Table "eqTractCasNight"}} GROUP BY Tract
) n ON d.Tract = n.Tract`),
			},
			model.MetricDisplacedHouseholds: {
				Level:   model.LevelTract,
				Columns: []string{"DisplacedHouseholds"},
				SQL: mustSQL("earthquake_displaced_households", `
SELECT Tract AS {{.Q "tract"}},
	SUM(COALESCE(DisplacedHouseholds, 0)) AS {{.Q "DisplacedHouseholds"}}
FROM {{.Table "eqTract"}}
GROUP BY Tract`),
			},
			model.MetricShelterNeeds: {
				Level:   model.LevelTract,
				Columns: []string{"ShelterNeeds"},
				SQL: mustSQL("earthquake_shelter_needs", `
SELECT Tract AS {{.Q "tract"}},
	SUM(COALESCE(ShortTermShelter, 0)) AS {{.Q "ShelterNeeds"}}
FROM {{.Table "eqTract"}}
GROUP BY Tract`),
			},
			model.MetricDebris: {
				Level:   model.LevelTract,
				Columns: []string{"DebrisBW", "DebrisCS", "DebrisTotal"},
				SQL: mustSQL("earthquake_debris", `
SELECT Tract AS {{.Q "tract"}},
	{{.Scale "SUM(COALESCE(DebrisW, 0))"}} AS {{.Q "DebrisBW"}},
	{{.Scale "SUM(COALESCE(DebrisS, 0))"}} AS {{.Q "DebrisCS"}},
	{{.Scale "SUM(COALESCE(DebrisTotal, 0))"}} AS {{.Q "DebrisTotal"}}
FROM {{.Table "eqTract"}}
GROUP BY Tract`),
			},
			model.MetricDemographics:        demographicsTemplate(model.LevelTract),
			model.MetricEssentialFacilities: facilitiesTemplate(model.HazardEarthquake, "eq", "PDsComplete", "FunctDay1"),
		},
		Scenarios: mustSQL("earthquake_scenarios", `
SELECT DISTINCT eqScenarioName AS {{.Q "Scenario"}} FROM {{.Table "RgnExpeqScenario"}}`),
		ReturnPeriods: mustSQL("earthquake_return_periods", `
SELECT DISTINCT {{.Dialect.Text "ReturnPeriod"}} AS {{.Q "ReturnPeriod"}} FROM {{.Table "RgnExpeqScenario"}}`),
		FallbackScenario:      true,
		FallbackReturnPeriods: []string{model.ReturnPeriodDeterministic},
	})
}
