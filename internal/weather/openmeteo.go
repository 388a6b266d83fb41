package weather

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"asemataulu.org/internal/logging"
	"asemataulu.org/internal/stations"
	"asemataulu.org/internal/upstream"
)

const (
	// OpenMeteoName selects the Open-Meteo source in configuration.
	OpenMeteoName = "open-meteo"
	// OpenMeteoLabel names the Open-Meteo feed in errors.
	OpenMeteoLabel = "Open-Meteo"

	DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"
)

// Timestamp layouts accepted in current_weather.time and hourly.time, most specific
// first. Open-Meteo itself sends the first one.
var openMeteoLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"15:04",
}

type openMeteoResponse struct {
	CurrentWeather *openMeteoCurrent `json:"current_weather"`
	Hourly         *openMeteoHourly  `json:"hourly"`
}

type openMeteoCurrent struct {
	Time        string   `json:"time"`
	Temperature *float64 `json:"temperature"`
	WeatherCode *float64 `json:"weathercode"`
}

type openMeteoHourly struct {
	Time                []string   `json:"time"`
	ApparentTemperature []*float64 `json:"apparent_temperature"`
}

// OpenMeteoSource reads the Open-Meteo forecast API for a coordinate pair.
//
// FeelsLike comes from the hourly apparent_temperature series at the entry nearest
// to the current-weather timestamp. Without a usable entry it stays nil; it never
// falls back to the temperature.
type OpenMeteoSource struct {
	client  *upstream.Client
	baseURL string
	logger  *slog.Logger
}

// NewOpenMeteoSource creates an Open-Meteo source. An empty baseURL selects
// DefaultOpenMeteoURL.
func NewOpenMeteoSource(client *upstream.Client, baseURL string, logger *slog.Logger) *OpenMeteoSource {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenMeteoSource{
		client:  client,
		baseURL: baseURL,
		logger:  logger.With(logging.Component("weather_source"), slog.String("source", OpenMeteoName)),
	}
}

func (s *OpenMeteoSource) Name() string {
	return OpenMeteoName
}

func (s *OpenMeteoSource) Fetch(ctx context.Context, loc stations.CityLocation) (Weather, error) {
	query := map[string]string{
		"latitude":        strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		"longitude":       strconv.FormatFloat(loc.Lon, 'f', -1, 64),
		"current_weather": "true",
		"hourly":          "apparent_temperature",
		"timezone":        "auto",
	}

	body, err := s.client.Get(ctx, OpenMeteoLabel, s.baseURL, query)
	if err != nil {
		return Weather{}, err
	}

	w, err := s.Parse(loc, body)
	if err != nil {
		return Weather{}, err
	}

	logging.LogOperation(s.logger, "weather_fetched", slog.String("city", loc.City))
	return w, nil
}

func (s *OpenMeteoSource) Parse(loc stations.CityLocation, body []byte) (Weather, error) {
	var resp openMeteoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Weather{}, &ParseError{Source: OpenMeteoLabel, Err: err}
	}

	current := resp.CurrentWeather
	if current == nil || current.Temperature == nil {
		return Weather{}, noData(OpenMeteoLabel)
	}

	temperature := *current.Temperature
	w := Weather{
		Location:    loc,
		Temperature: &temperature,
	}

	if h := resp.Hourly; h != nil {
		idx := nearestIndex(h.Time, current.Time)
		if idx >= 0 && idx < len(h.ApparentTemperature) && h.ApparentTemperature[idx] != nil {
			feelsLike := *h.ApparentTemperature[idx]
			w.FeelsLike = &feelsLike
		}
	}

	code := -1
	if current.WeatherCode != nil {
		code = int(*current.WeatherCode)
	}
	w.setCondition(OpenMeteoCondition(code))

	return w, nil
}

// OpenMeteoCondition maps a WMO weather code to a condition. Unknown codes are
// Cloudy.
func OpenMeteoCondition(code int) Condition {
	switch {
	case code == 0:
		return Sunny
	case code >= 71 && code <= 77, code == 85, code == 86:
		return Snowing
	case code >= 51 && code <= 57, code >= 61 && code <= 67, code >= 80 && code <= 82, code >= 95 && code <= 99:
		return Raining
	default:
		return Cloudy
	}
}

// nearestIndex returns the index of target in times, or when absent the index of
// the timestamp closest to it. Ties go to the earlier index. It returns -1 when
// nothing comparable exists.
func nearestIndex(times []string, target string) int {
	for i, t := range times {
		if t == target {
			return i
		}
	}

	want, ok := parseOpenMeteoTime(target)
	if !ok {
		return -1
	}

	best := -1
	var bestDiff time.Duration
	for i, t := range times {
		got, ok := parseOpenMeteoTime(t)
		if !ok {
			continue
		}
		diff := got.Sub(want)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

func parseOpenMeteoTime(s string) (time.Time, bool) {
	for _, layout := range openMeteoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
