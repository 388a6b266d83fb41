// Package weather turns the FMI and Open-Meteo feeds into Weather records for the
// dashboard. Each feed is a Source with its own parsing rules; the two sources
// intentionally differ in how they fill FeelsLike when data is missing.
package weather

import (
	"context"
	"errors"
	"fmt"

	"asemataulu.org/internal/stations"
	"asemataulu.org/internal/upstream"
)

// Weather is the current weather at one location. Nil fields render as JSON null.
type Weather struct {
	Location       stations.CityLocation `json:"location"`
	Temperature    *float64              `json:"temperature"`
	FeelsLike      *float64              `json:"feelsLike"`
	ConditionEmoji *string               `json:"conditionEmoji"`
	ConditionLabel *string               `json:"conditionLabel"`
}

func (w *Weather) setCondition(c Condition) {
	emoji, label := c.Emoji, c.Label
	w.ConditionEmoji = &emoji
	w.ConditionLabel = &label
}

// Condition is a display condition shown next to the temperature.
type Condition struct {
	Emoji string
	Label string
}

var (
	Sunny        = Condition{Emoji: "☀️", Label: "Sunny"}
	Cloudy       = Condition{Emoji: "☁️", Label: "Cloudy"}
	Raining      = Condition{Emoji: "🌧️", Label: "Raining"}
	Snowing      = Condition{Emoji: "❄️", Label: "Snowing"}
	Thunderstorm = Condition{Emoji: "⛈️", Label: "Thunderstorm"}
	Sleet        = Condition{Emoji: "🌨️", Label: "Sleet"}
	Fog          = Condition{Emoji: "🌫️", Label: "Fog"}
)

// Source is one weather feed.
type Source interface {
	// Name is the configuration name of the source.
	Name() string
	// Fetch requests the current weather for loc and parses it.
	Fetch(ctx context.Context, loc stations.CityLocation) (Weather, error)
	// Parse turns a raw response body into a Weather for loc.
	Parse(loc stations.CityLocation, body []byte) (Weather, error)
}

// ErrNoData is returned when a response is well formed but carries no usable
// current weather.
var ErrNoData = errors.New("no weather data available")

// ParseError is returned when a response body cannot be parsed.
type ParseError = upstream.ParseError

func noData(source string) error {
	return fmt.Errorf("%w from %s", ErrNoData, source)
}
