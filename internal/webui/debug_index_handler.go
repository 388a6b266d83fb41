// Package webui serves a plain HTML debug page that dumps the service's
// configuration, cache state and freshly fetched upstream data.
package webui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"

	"asemataulu.org/internal/app"
	"asemataulu.org/internal/junat"
	"asemataulu.org/internal/weather"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"config", "cache", "departures", "weather"}

const fetchTimeout = 20 * time.Second

type debugData struct {
	Title string
	Pre   string
	Links []string
}

// cacheStatser is implemented by departure sources that keep a train cache.
type cacheStatser interface {
	CacheStats() junat.CacheStats
}

type WebUI struct {
	App *app.Application
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none';")

	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
		Links: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	var title string

	switch r.URL.Query().Get("dataType") {
	case "config":
		cfg := webUI.App.Config
		if len(cfg.ApiKeys) > 0 {
			cfg.ApiKeys = []string{"<redacted>"}
		}
		data = cfg
		title = "Configuration"
	case "cache":
		if statser, ok := webUI.App.Departures.(cacheStatser); ok {
			data = statser.CacheStats()
		} else {
			data = map[string]string{"error": "departure source has no train cache"}
		}
		title = "Train detail cache"
	case "departures":
		ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
		defer cancel()
		data = resultOrError(webUI.App.Departures.FetchDepartures(ctx))
		title = "Departures from " + webUI.App.Departures.Station()
	case "weather":
		ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
		defer cancel()
		data = resultOrError(weather.FetchAll(ctx, webUI.App.Weather, webUI.App.Locations))
		title = "Weather from " + webUI.App.Weather.Name()
	default:
		data = map[string]string{
			"error": "Please use one of the following: config, cache, departures, weather.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}

func resultOrError[T any](v T, err error) interface{} {
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return v
}
