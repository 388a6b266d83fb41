package weather

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"asemataulu.org/internal/logging"
	"asemataulu.org/internal/stations"
	"asemataulu.org/internal/upstream"
)

const (
	// FMIName selects the FMI source in configuration.
	FMIName = "fmi"
	// FMILabel names the FMI feed in errors.
	FMILabel = "FMI"

	DefaultFMIURL = "https://opendata.fmi.fi/wfs"

	fmiStoredQuery = "fmi::forecast::harmonie::surface::point::multipointcoverage"
	// Column order of every tuple follows this list.
	fmiParameters = "temperature,weathersymbol3,humidity,windspeedms"
)

// FMISource reads the FMI open-data WFS forecast for a place name.
//
// Only the first tuple of the response is used. When the tuple carries humidity
// and wind speed, FeelsLike is the apparent temperature; otherwise it equals the
// temperature.
type FMISource struct {
	client  *upstream.Client
	baseURL string
	logger  *slog.Logger
}

// NewFMISource creates an FMI source. An empty baseURL selects DefaultFMIURL.
func NewFMISource(client *upstream.Client, baseURL string, logger *slog.Logger) *FMISource {
	if baseURL == "" {
		baseURL = DefaultFMIURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FMISource{
		client:  client,
		baseURL: baseURL,
		logger:  logger.With(logging.Component("weather_source"), slog.String("source", FMIName)),
	}
}

func (s *FMISource) Name() string {
	return FMIName
}

func (s *FMISource) Fetch(ctx context.Context, loc stations.CityLocation) (Weather, error) {
	query := map[string]string{
		"service":        "WFS",
		"version":        "2.0.0",
		"request":        "getFeature",
		"storedquery_id": fmiStoredQuery,
		"place":          loc.City,
		"parameters":     fmiParameters,
	}

	body, err := s.client.Get(ctx, FMILabel, s.baseURL, query)
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

func (s *FMISource) Parse(loc stations.CityLocation, body []byte) (Weather, error) {
	tupleList, err := findTupleList(body)
	if err != nil {
		return Weather{}, err
	}

	tuples := splitTuples(tupleList)
	if len(tuples) == 0 {
		return Weather{}, noData(FMILabel)
	}

	columns := strings.Fields(tuples[0])
	if len(columns) < 2 {
		return Weather{}, &ParseError{Source: FMILabel, Err: fmt.Errorf("tuple %q has %d columns, want at least 2", tuples[0], len(columns))}
	}

	values := make([]float64, len(columns))
	for i, col := range columns {
		v, err := strconv.ParseFloat(col, 64)
		if err != nil {
			return Weather{}, &ParseError{Source: FMILabel, Err: fmt.Errorf("column %d: %w", i, err)}
		}
		values[i] = v
	}

	temperature := values[0]
	if math.IsNaN(temperature) {
		return Weather{}, noData(FMILabel)
	}

	feelsLike := temperature
	if len(values) >= 4 && !math.IsNaN(values[2]) && !math.IsNaN(values[3]) {
		feelsLike = ApparentTemperature(temperature, values[2], values[3])
	}

	w := Weather{
		Location:    loc,
		Temperature: &temperature,
		FeelsLike:   &feelsLike,
	}

	symbol := values[1]
	if math.IsNaN(symbol) {
		w.setCondition(Cloudy)
	} else {
		// weathersymbol3 is delivered as a decimal, e.g. "31.0"
		w.setCondition(FMICondition(int(symbol)))
	}

	return w, nil
}

// FMICondition maps an FMI weathersymbol3 code to a condition. Codes outside the
// known ranges are Cloudy.
func FMICondition(symbol int) Condition {
	switch {
	case symbol == 1:
		return Sunny
	case symbol == 2 || symbol == 3:
		return Cloudy
	case symbol >= 31 && symbol <= 33:
		return Raining
	case symbol >= 41 && symbol <= 53:
		return Snowing
	case symbol >= 61 && symbol <= 64:
		return Thunderstorm
	case symbol >= 71 && symbol <= 83:
		return Sleet
	case symbol >= 91 && symbol <= 92:
		return Fog
	default:
		return Cloudy
	}
}

// findTupleList scans the document for the doubleOrNilReasonTupleList element and
// returns its text. A missing element yields an empty string.
func findTupleList(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	root := true

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			if root {
				return "", &ParseError{Source: FMILabel, Err: errors.New("empty document")}
			}
			return "", nil
		}
		if err != nil {
			return "", &ParseError{Source: FMILabel, Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if root {
			if start.Name.Local == "parsererror" {
				return "", &ParseError{Source: FMILabel, Err: errors.New("document root is parsererror")}
			}
			root = false
		}

		if start.Name.Local == "doubleOrNilReasonTupleList" {
			var text string
			if err := decoder.DecodeElement(&text, &start); err != nil {
				return "", &ParseError{Source: FMILabel, Err: err}
			}
			return text, nil
		}
	}
}

// splitTuples splits the tuple list into one non-empty line per timestamp.
func splitTuples(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	tuples := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			tuples = append(tuples, line)
		}
	}
	return tuples
}
