package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"asemataulu.org/internal/app"
	"asemataulu.org/internal/appconf"
	"asemataulu.org/internal/junat"
	"asemataulu.org/internal/logging"
	"asemataulu.org/internal/models"
	"asemataulu.org/internal/stations"
	"asemataulu.org/internal/weather"
)

type fakeDepartures struct {
	departures []junat.Departure
	err        error
	calls      atomic.Int32
}

func (f *fakeDepartures) Station() string { return "JP" }

func (f *fakeDepartures) FetchDepartures(ctx context.Context) ([]junat.Departure, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.departures, nil
}

type fakeWeather struct {
	name string
	err  error
	mu   sync.Mutex
	seen []stations.CityLocation
}

func (f *fakeWeather) Name() string {
	if f.name != "" {
		return f.name
	}
	return "fake"
}

func (f *fakeWeather) Fetch(ctx context.Context, loc stations.CityLocation) (weather.Weather, error) {
	f.mu.Lock()
	f.seen = append(f.seen, loc)
	f.mu.Unlock()
	if f.err != nil {
		return weather.Weather{}, f.err
	}
	temp := loc.Lat / 10
	label := weather.Sunny.Label
	return weather.Weather{Location: loc, Temperature: &temp, FeelsLike: &temp, ConditionLabel: &label}, nil
}

func (f *fakeWeather) Parse(loc stations.CityLocation, body []byte) (weather.Weather, error) {
	return weather.Weather{Location: loc}, nil
}

func testDepartures() []junat.Departure {
	scheduled := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	return []junat.Departure{
		{
			ScheduledTime:    scheduled,
			LiveEstimateTime: scheduled.Add(2 * time.Minute),
			Destination:      "Helsinki",
			Train:            junat.Train{TrainNumber: 9650, DepartureDate: "2026-02-20", CommuterLineID: "R"},
		},
		{
			ScheduledTime:    scheduled.Add(10 * time.Minute),
			LiveEstimateTime: scheduled.Add(10 * time.Minute),
			Destination:      "Riihimäki",
			Train:            junat.Train{TrainNumber: 9671, DepartureDate: "2026-02-20", CommuterLineID: "Z"},
		},
	}
}

type testOption func(*app.Application)

func withAPIKeys(keys ...string) testOption {
	return func(a *app.Application) { a.Config.ApiKeys = keys }
}

func withRateLimit(n int) testOption {
	return func(a *app.Application) { a.Config.RateLimit = n }
}

// createTestApi creates a RestAPI backed by fake departure and weather sources.
func createTestApi(t *testing.T, deps *fakeDepartures, wx *fakeWeather, opts ...testOption) *RestAPI {
	t.Helper()

	helsinki, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	application := &app.Application{
		Config: appconf.Config{
			Env:       appconf.EnvFlagToEnvironment("test"),
			RateLimit: 100,
		},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Departures: deps,
		Weather:    wx,
		Locations:  stations.DefaultLocations(),
		TimeZone:   helsinki,
	}
	for _, opt := range opts {
		opt(application)
	}

	api := NewRestAPI(application)
	t.Cleanup(func() { _ = api.Close() })
	return api
}

// serveApiAndRetrieveEndpoint serves the full middleware chain, requests endpoint and
// decodes the envelope.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()

	server := httptest.NewServer(api.Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))

	return resp, response
}

func dataMap(t *testing.T, response models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object, got %T", response.Data)
	return data
}
