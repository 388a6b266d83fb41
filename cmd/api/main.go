package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asemataulu.org/internal/app"
	"asemataulu.org/internal/appconf"
	"asemataulu.org/internal/junat"
	"asemataulu.org/internal/logging"
	"asemataulu.org/internal/restapi"
	"asemataulu.org/internal/upstream"
	"asemataulu.org/internal/weather"
)

const defaultConfigFile = "config.yml"

func main() {
	cfg, err := buildConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// buildConfig layers defaults, the config file, .env files, environment
// variables and finally any flags that were set explicitly.
func buildConfig(args []string, lookup func(string) (string, bool)) (appconf.Config, error) {
	fs := flag.NewFlagSet("asemataulu", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", defaultConfigFile, "Path to YAML config file")
	port := fs.Int("port", 4000, "API server port")
	env := fs.String("env", "development", "Environment (development|test|production)")
	apiKeys := fs.String("api-keys", "", "Comma separated API keys; empty leaves the API open")
	weatherSource := fs.String("weather-source", "fmi", "Weather source (fmi|open-meteo)")
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := appconf.LoadDotEnv(".env", ".env.local"); err != nil {
		return appconf.Config{}, err
	}

	path := *configPath
	if !set["config"] {
		// the default file is optional
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := appconf.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}

	if set["port"] {
		cfg.Port = *port
	}
	if set["env"] {
		cfg.Env = appconf.EnvFlagToEnvironment(*env)
	}
	if set["api-keys"] {
		cfg.ApiKeys = appconf.SplitList(*apiKeys)
	}
	if set["weather-source"] {
		cfg.Weather.Source = *weatherSource
	}

	return cfg, cfg.Validate()
}

// newApplication wires the upstream client, the departure pipeline and the
// configured weather source.
func newApplication(cfg appconf.Config, logger *slog.Logger) (*app.Application, error) {
	tz, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := upstream.NewClient(upstream.Config{
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
	}, logger)

	departures := junat.NewService(junat.Config{
		BaseURL:   cfg.Upstream.DigitrafficURL,
		Station:   cfg.TrackedStation,
		Location:  tz,
		CacheSize: cfg.Cache.Size,
		CacheTTL:  cfg.Cache.TTL,
	}, client, logger)

	source, err := weather.NewSource(cfg.Weather.Source, client, weather.URLs{
		FMI:       cfg.Upstream.FMIURL,
		OpenMeteo: cfg.Upstream.OpenMeteoURL,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &app.Application{
		Config:     cfg,
		Logger:     logger,
		Departures: departures,
		Weather:    source,
		Locations:  cfg.Locations(),
		TimeZone:   tz,
	}, nil
}

func run(cfg appconf.Config, logger *slog.Logger) error {
	application, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}

	api := restapi.NewRestAPI(application)
	defer logging.SafeCloseWithLogging(api, logger, "rest_api")

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "starting_server",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env.String()),
			slog.String("station", cfg.TrackedStation),
			slog.String("weather_source", cfg.Weather.Source))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logging.LogOperation(logger, "shutting_down_server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
