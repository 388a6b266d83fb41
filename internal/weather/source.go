package weather

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"asemataulu.org/internal/stations"
	"asemataulu.org/internal/upstream"
)

// URLs overrides the upstream base URLs. Empty fields select the public endpoints.
type URLs struct {
	FMI       string
	OpenMeteo string
}

// NewSource returns the source registered under name.
func NewSource(name string, client *upstream.Client, urls URLs, logger *slog.Logger) (Source, error) {
	switch name {
	case FMIName:
		return NewFMISource(client, urls.FMI, logger), nil
	case OpenMeteoName:
		return NewOpenMeteoSource(client, urls.OpenMeteo, logger), nil
	default:
		return nil, fmt.Errorf("unknown weather source %q", name)
	}
}

// FetchAll fetches every location concurrently. The result follows the order of
// locations; the first error fails the whole call.
func FetchAll(ctx context.Context, src Source, locations []stations.CityLocation) ([]Weather, error) {
	results := make([]Weather, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range locations {
		g.Go(func() error {
			w, err := src.Fetch(gctx, loc)
			if err != nil {
				return fmt.Errorf("weather for %s: %w", loc.City, err)
			}
			results[i] = w
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
