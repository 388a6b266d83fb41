package junat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"asemataulu.org/internal/logging"
	"asemataulu.org/internal/upstream"
)

// Source names the digitraffic feed in transport errors.
const Source = "digitraffic"

// ErrNoTrainData is returned when the train-detail endpoint answers with an empty list.
var ErrNoTrainData = errors.New("no train data available from digitraffic")

// Config configures the departure pipeline.
type Config struct {
	BaseURL   string
	Station   string
	Location  *time.Location
	CacheSize int
	CacheTTL  time.Duration
}

// Service runs the departure pipeline against digitraffic.
type Service struct {
	client   *upstream.Client
	baseURL  string
	station  string
	location *time.Location
	cache    *TrainCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates the departure pipeline. The train cache lives as long as the service.
func NewService(cfg Config, client *upstream.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &Service{
		client:   client,
		baseURL:  cfg.BaseURL,
		station:  cfg.Station,
		location: loc,
		logger:   logger.With(logging.Component("junat_pipeline")),
		now:      time.Now,
	}
	s.cache = NewTrainCache(cfg.CacheSize, cfg.CacheTTL, s.fetchTrain)

	return s
}

// Station returns the tracked station code.
func (s *Service) Station() string {
	return s.station
}

// CacheStats reports usage of the train-detail cache.
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// FetchDepartures returns the upcoming departures from the tracked station, each
// enriched with its commuter line. Enrichment runs concurrently; any failed
// enrichment fails the whole call.
func (s *Service) FetchDepartures(ctx context.Context) ([]Departure, error) {
	now := s.now()

	trains, err := s.fetchLiveTrains(ctx)
	if err != nil {
		return nil, err
	}

	departures := RankDepartures(trains, s.station, now)
	today := now.In(s.location).Format(time.DateOnly)

	g, gctx := errgroup.WithContext(ctx)
	for i := range departures {
		g.Go(func() error {
			date := departures[i].Train.DepartureDate
			if date == "" {
				date = today
			}

			train, err := s.cache.Get(gctx, date, departures[i].Train.TrainNumber)
			if err != nil {
				return fmt.Errorf("enriching train %d: %w", departures[i].Train.TrainNumber, err)
			}
			departures[i].Train = train
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.LogError(s.logger, "departure enrichment failed", err,
			slog.String("station", s.station))
		return nil, err
	}

	logging.LogOperation(s.logger, "departures_fetched",
		slog.String("station", s.station),
		slog.Int("live_trains", len(trains)),
		slog.Int("departure_count", len(departures)),
		slog.Duration("duration", time.Since(now)))

	return departures, nil
}

func (s *Service) fetchLiveTrains(ctx context.Context) ([]LiveTrain, error) {
	endpoint := fmt.Sprintf("%s/live-trains/station/%s", s.baseURL, url.PathEscape(s.station))
	query := map[string]string{
		"arrived_trains":      "1",
		"arriving_trains":     "50",
		"departed_trains":     "1",
		"departing_trains":    "50",
		"include_nonstopping": "false",
	}

	var trains []LiveTrain
	if err := s.client.GetJSON(ctx, Source, endpoint, query, &trains); err != nil {
		return nil, fmt.Errorf("fetching departures for %s: %w", s.station, err)
	}
	return trains, nil
}

func (s *Service) fetchTrain(ctx context.Context, date string, trainNumber int) (Train, error) {
	endpoint := fmt.Sprintf("%s/trains/%s/%s", s.baseURL, url.PathEscape(date), strconv.Itoa(trainNumber))

	var trains []Train
	if err := s.client.GetJSON(ctx, Source, endpoint, nil, &trains); err != nil {
		return Train{}, fmt.Errorf("fetching train %d on %s: %w", trainNumber, date, err)
	}
	if len(trains) == 0 {
		return Train{}, fmt.Errorf("train %d on %s: %w", trainNumber, date, ErrNoTrainData)
	}

	train := trains[0]
	if train.DepartureDate == "" {
		train.DepartureDate = date
	}
	return train, nil
}
