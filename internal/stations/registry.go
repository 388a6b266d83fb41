// Package stations holds the static station and city data the dashboard needs:
// the tracked station, terminal station names and the weather locations.
package stations

// TrackedStation is the station whose departures the dashboard shows (Järvenpää).
const TrackedStation = "JP"

var stationToCity = map[string]string{
	"HKI": "Helsinki",
	"RI":  "Riihimäki",
	"TPE": "Tampere",
	"TL":  "Toijala",
}

// ResolveDestination maps a terminal station short code to a city name.
// Unknown and empty codes resolve to "".
func ResolveDestination(stationCode string) string {
	return stationToCity[stationCode]
}

// CityLocation identifies a place weather is shown for.
type CityLocation struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	City string  `json:"city"`
}

// DefaultLocations returns the built-in weather locations.
func DefaultLocations() []CityLocation {
	return []CityLocation{
		{Lat: 60.4737, Lon: 25.0899, City: "Järvenpää"},
		{Lat: 60.1708, Lon: 24.9375, City: "Helsinki"},
	}
}

// FindLocation returns the location whose city name matches exactly.
func FindLocation(locations []CityLocation, city string) (CityLocation, bool) {
	for _, loc := range locations {
		if loc.City == city {
			return loc, true
		}
	}
	return CityLocation{}, false
}
