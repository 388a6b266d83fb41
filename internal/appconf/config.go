// Package appconf holds the service configuration. Values are layered: built-in
// defaults, then the YAML file, then environment variables (optionally seeded
// from .env files), then command-line flags. Validation runs on the result.
package appconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"asemataulu.org/internal/stations"
)

type Config struct {
	Port           int            `yaml:"port" validate:"gt=0,lte=65535"`
	Env            Environment    `yaml:"env"`
	ApiKeys        []string       `yaml:"apiKeys"`
	RateLimit      int            `yaml:"rateLimit" validate:"gte=0"`
	AllowedOrigins []string       `yaml:"allowedOrigins"`
	LogLevel       string         `yaml:"logLevel" validate:"omitempty,oneof=debug info warn warning error"`
	TrackedStation string         `yaml:"trackedStation" validate:"required,alpha,uppercase"`
	Timezone       string         `yaml:"timezone" validate:"required"`
	Weather        WeatherConfig  `yaml:"weather"`
	Upstream       UpstreamConfig `yaml:"upstream"`
	Cache          CacheConfig    `yaml:"cache"`
}

type WeatherConfig struct {
	Source    string           `yaml:"source" validate:"oneof=fmi open-meteo"`
	Locations []LocationConfig `yaml:"locations" validate:"min=1,dive"`
}

type LocationConfig struct {
	City string  `yaml:"city" validate:"required"`
	Lat  float64 `yaml:"lat" validate:"latitude"`
	Lon  float64 `yaml:"lon" validate:"longitude"`
}

type UpstreamConfig struct {
	DigitrafficURL string        `yaml:"digitrafficURL" validate:"required,url"`
	FMIURL         string        `yaml:"fmiURL" validate:"omitempty,url"`
	OpenMeteoURL   string        `yaml:"openMeteoURL" validate:"omitempty,url"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent      string        `yaml:"userAgent"`
}

type CacheConfig struct {
	Size int           `yaml:"size" validate:"gte=0"`
	TTL  time.Duration `yaml:"ttl" validate:"gte=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	locations := stations.DefaultLocations()
	weatherLocations := make([]LocationConfig, len(locations))
	for i, loc := range locations {
		weatherLocations[i] = LocationConfig{City: loc.City, Lat: loc.Lat, Lon: loc.Lon}
	}

	return Config{
		Port:           4000,
		Env:            Development,
		RateLimit:      10,
		LogLevel:       "info",
		TrackedStation: stations.TrackedStation,
		Timezone:       "Europe/Helsinki",
		Weather: WeatherConfig{
			Source:    "fmi",
			Locations: weatherLocations,
		},
		Upstream: UpstreamConfig{
			DigitrafficURL: "https://rata.digitraffic.fi/api/v1",
			Timeout:        15 * time.Second,
			UserAgent:      "asemataulu",
		},
		Cache: CacheConfig{
			Size: 512,
			TTL:  24 * time.Hour,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path returns
// the defaults. Fields missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDotEnv loads .env into the process environment and then lets .env.local
// override it. Missing files are skipped; existing variables win over .env.
func LoadDotEnv(envFile, localFile string) error {
	if fileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	if fileExists(localFile) {
		if err := godotenv.Overload(localFile); err != nil {
			return fmt.Errorf("loading %s: %w", localFile, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = port
	}
	if v, ok := lookup("ENV"); ok && v != "" {
		c.Env = EnvFlagToEnvironment(v)
	}
	if v, ok := lookup("API_KEYS"); ok {
		c.ApiKeys = SplitList(v)
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = SplitList(v)
	}
	if v, ok := lookup("WEATHER_SOURCE"); ok && v != "" {
		c.Weather.Source = v
	}
	if v, ok := lookup("TRACKED_STATION"); ok && v != "" {
		c.TrackedStation = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks field constraints and that the timezone exists.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Locations returns the configured weather locations.
func (c Config) Locations() []stations.CityLocation {
	out := make([]stations.CityLocation, len(c.Weather.Locations))
	for i, l := range c.Weather.Locations {
		out[i] = stations.CityLocation{Lat: l.Lat, Lon: l.Lon, City: l.City}
	}
	return out
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
