package utils

import (
	"errors"
	"math"
	"regexp"
	"unicode/utf8"
)

// City names are letters (any script), spaces, hyphens and apostrophes.
var validCityPattern = regexp.MustCompile(`^[\p{L}][\p{L} '\-]*$`)

// ValidateCity validates a city name used to look up a weather location.
func ValidateCity(city string) error {
	if city == "" {
		return errors.New("city cannot be empty")
	}

	if utf8.RuneCountInString(city) > 64 {
		return errors.New("city too long (max 64 characters)")
	}

	if !validCityPattern.MatchString(city) {
		return errors.New("city contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}
