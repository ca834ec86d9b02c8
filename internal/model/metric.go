package model

// Metric names one measure family the dispatcher can compute.
type Metric string

const (
	MetricEconomicLoss        Metric = "economic_loss"
	MetricDamageByGeography   Metric = "building_damage_by_geography"
	MetricDamageByOccupancy   Metric = "building_damage_by_occupancy"
	MetricDamageByType        Metric = "building_damage_by_type"
	MetricInjuries            Metric = "injuries"
	MetricFatalities          Metric = "fatalities"
	MetricDisplacedHouseholds Metric = "displaced_households"
	MetricShelterNeeds        Metric = "shelter_needs"
	MetricDebris              Metric = "debris"
	MetricDemographics        Metric = "demographics"
	MetricEssentialFacilities Metric = "essential_facilities"
	MetricTravelTimeToSafety  Metric = "travel_time_to_safety"
)

// ResultMetrics are the per-geography metrics merged by the result aggregator,
// in merge order. Economic loss comes first so its key defines the output level.
var ResultMetrics = []Metric{
	MetricEconomicLoss,
	MetricDamageByGeography,
	MetricInjuries,
	MetricFatalities,
	MetricDisplacedHouseholds,
	MetricShelterNeeds,
	MetricDebris,
	MetricDemographics,
}
