package utils

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// ParseOptionalFloatParam reads key from params. It returns nil when the key is
// absent, and records a field error when the value is not a finite number.
func ParseOptionalFloatParam(params url.Values, key string, fieldErrors map[string][]string) (*float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return nil, fieldErrors
	}

	f, err := strconv.ParseFloat(val, 64)
	// ParseFloat accepts "NaN" and "Inf"
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return nil, fieldErrors
	}
	return &f, fieldErrors
}

// ParseCoordinateOverride reads an optional lat/lon pair. Both or neither must be
// present, and present values must be in range.
func ParseCoordinateOverride(params url.Values) (lat, lon *float64, fieldErrors map[string][]string) {
	lat, fieldErrors = ParseOptionalFloatParam(params, "lat", nil)
	lon, fieldErrors = ParseOptionalFloatParam(params, "lon", fieldErrors)

	if lat != nil {
		if err := ValidateLatitude(*lat); err != nil {
			fieldErrors["lat"] = append(fieldErrors["lat"], err.Error())
		}
	}
	if lon != nil {
		if err := ValidateLongitude(*lon); err != nil {
			fieldErrors["lon"] = append(fieldErrors["lon"], err.Error())
		}
	}

	if len(fieldErrors) == 0 && (lat == nil) != (lon == nil) {
		fieldErrors["lat"] = append(fieldErrors["lat"], "lat and lon must be given together")
	}

	return lat, lon, fieldErrors
}
