package climate

// BaselineTempC is the fixed 1986-2005 average surface temperature (°C) that
// anomalies are computed against.
const BaselineTempC = 14.5

// DefaultModel is the CMIP6 model used for retrieval; ACCESS-CM2 has good
// global coverage in the NEX-GDDP archive.
const DefaultModel = "ACCESS-CM2"

// DefaultScenario is the moderate-emissions tier that unrecognized scenario
// names fall back to.
const DefaultScenario = "rcp45"

// Scenario holds the simplified IPCC projection constants for one emissions
// tier, plus its SSP equivalent in the NEX-GDDP archive layout.
type Scenario struct {
	Name         string
	SSP          string
	Increase2050 float64 // °C above baseline by 2050
	Increase2100 float64 // °C above baseline by 2100
}

var scenarios = map[string]Scenario{
	"rcp26": {Name: "rcp26", SSP: "ssp126", Increase2050: 1.5, Increase2100: 2.0},
	"rcp45": {Name: "rcp45", SSP: "ssp245", Increase2050: 2.0, Increase2100: 3.2},
	"rcp85": {Name: "rcp85", SSP: "ssp585", Increase2050: 2.5, Increase2100: 4.8},
}

// LookupScenario returns the constants for the named scenario. Unrecognized
// names fall back to the moderate tier. The permissive fallback is a
// deliberate policy inherited from the upstream service, not input
// validation; callers wanting strict checking use KnownScenario first.
func LookupScenario(name string) Scenario {
	if s, ok := scenarios[name]; ok {
		return s
	}
	return scenarios[DefaultScenario]
}

// KnownScenario reports whether name is one of the built-in scenarios.
func KnownScenario(name string) bool {
	_, ok := scenarios[name]
	return ok
}

// ProjectedIncrease interpolates the scenario's warming between its 2050 and
// 2100 endpoints. Progress is normalized over 2025-2100 and clamped, so
// years before 2025 pin to the 2050 constant's starting point and years past
// 2100 pin to the end.
func (s Scenario) ProjectedIncrease(year int) float64 {
	progress := float64(year-2025) / float64(2100-2025)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return s.Increase2050 + (s.Increase2100-s.Increase2050)*progress
}

// TimeRange returns the 20-year NEX-GDDP chunk label containing the year.
func TimeRange(year int) string {
	switch {
	case year < 2020:
		return "2015-2034"
	case year < 2040:
		return "2020-2039"
	case year < 2060:
		return "2040-2059"
	case year < 2080:
		return "2060-2079"
	default:
		return "2080-2099"
	}
}
