package app

import (
	"context"
	"log/slog"
	"time"

	"asemataulu.org/internal/appconf"
	"asemataulu.org/internal/junat"
	"asemataulu.org/internal/stations"
	"asemataulu.org/internal/weather"
)

// DepartureSource produces the departure board for the tracked station.
type DepartureSource interface {
	Station() string
	FetchDepartures(ctx context.Context) ([]junat.Departure, error)
}

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config     appconf.Config
	Logger     *slog.Logger
	Departures DepartureSource
	Weather    weather.Source
	Locations  []stations.CityLocation
	// TimeZone is used for rendering times to the dashboard.
	TimeZone *time.Location
}
