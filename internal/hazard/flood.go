package hazard

import "github.com/sells-group/hazus-cli/internal/model"

// floodCase restricts a flood result table to the active study case and return period.
const floodCase = `StudyCaseId = (SELECT StudyCaseID FROM {{.Table "flStudyCase"}} WHERE StudyCaseName = {{.Lit .Scenario}})
	AND ReturnPeriodId = {{.Lit .ReturnPeriod}}`

// floodDamageBands groups the percent-damaged building counts into the
// individual-assistance bands.
const floodDamageBands = `SUM(COALESCE(Dmg1_10, 0)) AS {{.Q "Affected"}},
	SUM(COALESCE(Dmg11_20, 0) + COALESCE(Dmg21_30, 0)) AS {{.Q "Minor"}},
	SUM(COALESCE(Dmg31_40, 0) + COALESCE(Dmg41_50, 0)) AS {{.Q "Major"}},
	SUM(COALESCE(DmgSubstantial, 0)) AS {{.Q "Destroyed"}}`

const floodDamageTotal = `SUM(COALESCE(Dmg0, 0) + COALESCE(Dmg1_10, 0) + COALESCE(Dmg11_20, 0) + COALESCE(Dmg21_30, 0) + COALESCE(Dmg31_40, 0) + COALESCE(Dmg41_50, 0) + COALESCE(DmgSubstantial, 0)) AS {{.Q "Total"}}`

// Flood results are block-level and filtered by study case and return period.
// Flood debris is stored in tons, so it is the one measure not rescaled.
func init() {
	register(&Variant{
		Hazard: model.HazardFlood,
		Level:  model.LevelBlock,
		Metrics: map[model.Metric]Template{
			model.MetricEconomicLoss: {
				Level:   model.LevelBlock,
				Columns: []string{"EconLoss"},
				SQL: mustSQL("flood_economic_loss", `
SELECT CensusBlock AS {{.Q "block"}},
	{{.Scale "SUM(TotalLoss)"}} AS {{.Q "EconLoss"}}
FROM {{.Table "flFRGBSEcLossByTotal"}}
WHERE `+floodCase+`
GROUP BY CensusBlock`),
			},
			model.MetricDamageByGeography: {
				Level:   model.LevelBlock,
				Columns: damageColumns,
				SQL: mustSQL("flood_damage_by_geography", `
SELECT CensusBlock AS {{.Q "block"}},
	`+floodDamageBands+`
FROM {{.Table "flFRGBSPhysDmgByCount"}}
WHERE `+floodCase+`
GROUP BY CensusBlock`),
			},
			model.MetricDamageByOccupancy: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByOccupancy],
				SQL: mustSQL("flood_damage_by_occupancy", `
SELECT Occupancy AS {{.Q "Occupancy"}},
	`+floodDamageTotal+`,
	`+floodDamageBands+`
FROM {{.Table "flFRGBSPhysDmgByCount"}}
WHERE `+floodCase+`
GROUP BY Occupancy`),
			},
			model.MetricDamageByType: {
				Level:   model.LevelNone,
				Columns: MetricColumns[model.MetricDamageByType],
				SQL: mustSQL("flood_damage_by_type", `
SELECT BldgType AS {{.Q "BuildingType"}},
	`+floodDamageTotal+`,
	`+floodDamageBands+`
FROM {{.Table "flFRGBSPhysDmgByCount"}}
WHERE `+floodCase+`
GROUP BY BldgType`),
			},
			model.MetricDisplacedHouseholds: {
				Level:   model.LevelBlock,
				Columns: []string{"DisplacedHouseholds"},
				SQL: mustSQL("flood_displaced_households", `
SELECT CensusBlock AS {{.Q "block"}},
	SUM(COALESCE(DisplacedHouseholds, 0)) AS {{.Q "DisplacedHouseholds"}}
FROM {{.Table "flFRShelter"}}
WHERE `+floodCase+`
GROUP BY CensusBlock`),
			},
			model.MetricShelterNeeds: {
				Level:   model.LevelBlock,
				Columns: []string{"ShelterNeeds"},
				SQL: mustSQL("flood_shelter_needs", `
SELECT CensusBlock AS {{.Q "block"}},
	SUM(COALESCE(ShortTermShelter, 0)) AS {{.Q "ShelterNeeds"}}
FROM {{.Table "flFRShelter"}}
WHERE `+floodCase+`
GROUP BY CensusBlock`),
			},
			model.MetricDebris: {
				Level:   model.LevelBlock,
				Columns: []string{"DebrisTotal"},
				SQL: mustSQL("flood_debris", `
SELECT CensusBlock AS {{.Q "block"}},
	SUM(COALESCE(FinishTons, 0) + COALESCE(StructureTons, 0) + COALESCE(FoundationTons, 0)) AS {{.Q "DebrisTotal"}}
FROM {{.Table "flFRDebris"}}
WHERE `+floodCase+`
GROUP BY CensusBlock`),
			},
			model.MetricDemographics:        demographicsTemplate(model.LevelBlock),
			model.MetricEssentialFacilities: facilitiesTemplate(model.HazardFlood, "flFR", "BldgDmgPct", "FunctDay1"),
		},
		Scenarios: mustSQL("flood_scenarios", `
SELECT DISTINCT StudyCaseName AS {{.Q "Scenario"}} FROM {{.Table "flStudyCase"}}`),
		ReturnPeriods: mustSQL("flood_return_periods", `
SELECT DISTINCT ReturnPeriodId AS {{.Q "ReturnPeriod"}}
FROM {{.Table "flFRGBSEcLossByTotal"}}
WHERE StudyCaseId = (SELECT StudyCaseID FROM {{.Table "flStudyCase"}} WHERE StudyCaseName = {{.Lit .Scenario}})`),
	})
}
