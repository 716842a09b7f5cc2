package domain

// IndicatorKey identifies one of the tracked environmental indicators.
type IndicatorKey string

const (
	IndicatorEnergy    IndicatorKey = "energy"
	IndicatorWater     IndicatorKey = "water"
	IndicatorEmissions IndicatorKey = "emissions"
	IndicatorWaste     IndicatorKey = "waste"
)

// Indicator describes a tracked sustainability indicator and its mapping
// to a workbook sheet and a GRI disclosure standard.
type Indicator struct {
	Key       IndicatorKey `json:"key" validate:"required,oneof=energy water emissions waste"`
	SheetName string       `json:"sheet_name" validate:"required"`
	GRICode   string       `json:"gri_code" validate:"required"`
	KPIName   string       `json:"kpi_name" validate:"required"`
	ESGWeight float64      `json:"esg_weight" validate:"gte=0,lte=1"`
}

// Indicators is the fixed registry of tracked indicators. The ESG weights
// sum to 1 and drive the overall score computation.
var Indicators = map[IndicatorKey]Indicator{
	IndicatorEnergy: {
		Key:       IndicatorEnergy,
		SheetName: "Energy_Consumption",
		GRICode:   "GRI 302",
		KPIName:   "Energy Consumption",
		ESGWeight: 0.25,
	},
	IndicatorWater: {
		Key:       IndicatorWater,
		SheetName: "Water_Usage",
		GRICode:   "GRI 303",
		KPIName:   "Water Usage",
		ESGWeight: 0.25,
	},
	IndicatorEmissions: {
		Key:       IndicatorEmissions,
		SheetName: "Emissions",
		GRICode:   "GRI 305",
		KPIName:   "GHG Emissions",
		ESGWeight: 0.35,
	},
	IndicatorWaste: {
		Key:       IndicatorWaste,
		SheetName: "Waste_Generation",
		GRICode:   "GRI 306",
		KPIName:   "Waste Generation",
		ESGWeight: 0.15,
	},
}

// IndicatorOrder is the canonical presentation order used by reports and
// API responses.
var IndicatorOrder = []IndicatorKey{
	IndicatorEnergy,
	IndicatorWater,
	IndicatorEmissions,
	IndicatorWaste,
}

// LookupIndicator returns the registry entry for key.
func LookupIndicator(key IndicatorKey) (Indicator, bool) {
	ind, ok := Indicators[key]
	return ind, ok
}

// ValidIndicatorKey reports whether key names a registered indicator.
func ValidIndicatorKey(key string) bool {
	_, ok := Indicators[IndicatorKey(key)]
	return ok
}
