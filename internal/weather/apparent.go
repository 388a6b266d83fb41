package weather

import "math"

// Heat index regression coefficients (NWS).
const (
	hiC1 = -42.379
	hiC2 = 2.04901523
	hiC3 = 10.14333127
	hiC4 = -0.22475541
	hiC5 = -0.00683783
	hiC6 = -0.05481717
	hiC7 = 0.00122874
	hiC8 = 0.00085282
	hiC9 = -0.00000199
)

// ApparentTemperature returns the "feels like" temperature in °C. Below 10 °C it is
// the wind chill; above 26 °C with humidity over 40 % it is the heat index;
// otherwise the temperature itself. The result is not rounded.
func ApparentTemperature(tempC, humidityPct, windSpeedMs float64) float64 {
	switch {
	case tempC < 10:
		f := math.Pow(windSpeedMs*3.6, 0.16)
		return 13.12 + 0.6215*tempC - 11.37*f + 0.3965*tempC*f

	case tempC > 26 && humidityPct > 40:
		t, rh := tempC, humidityPct
		return hiC1 +
			hiC2*t +
			hiC3*rh +
			hiC4*t*rh +
			hiC5*t*t +
			hiC6*rh*rh +
			hiC7*t*t*rh +
			hiC8*t*rh*rh +
			hiC9*t*t*rh*rh

	default:
		return tempC
	}
}
