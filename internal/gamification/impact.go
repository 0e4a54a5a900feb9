package gamification

import "math"

// Per-item environmental equivalents of a saved item.
const (
	CO2PerItemKg       = 2.5
	WaterPerItemLitres = 1800
	MealsPerItem       = 0.5
)

type Impact struct {
	CO2SavedKg       float64 `json:"co2Saved"`
	WaterSavedLitres int     `json:"waterSaved"`
	MealsEquivalent  int     `json:"mealsEquivalent"`
}

// ImpactOf converts a count of saved items into environmental equivalents.
func ImpactOf(itemsSaved int) Impact {
	return Impact{
		CO2SavedKg:       CO2Saved(itemsSaved),
		WaterSavedLitres: itemsSaved * WaterPerItemLitres,
		MealsEquivalent:  int(math.Round(float64(itemsSaved) * MealsPerItem)),
	}
}

// CO2Saved returns kilograms of CO2 saved, rounded to one decimal.
func CO2Saved(itemsSaved int) float64 {
	return math.Round(float64(itemsSaved)*CO2PerItemKg*10) / 10
}

// WasteReductionRate is the saved share of all finished items, in percent with one decimal.
func WasteReductionRate(saved, wasted int) float64 {
	total := saved + wasted
	if total == 0 {
		return 0
	}
	return math.Round(float64(saved)/float64(total)*1000) / 10
}
