package app

import (
	"net/http"
	"slices"
)

// apiKeyHeader is accepted as an alternative to the key query parameter, so
// kiosk displays can keep the key out of URLs.
const apiKeyHeader = "X-API-Key"

// RequestHasInvalidAPIKey checks the key query parameter, falling back to the
// X-API-Key header.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	key := r.URL.Query().Get("key")
	if key == "" {
		key = r.Header.Get(apiKeyHeader)
	}
	return app.IsInvalidAPIKey(key)
}

// IsInvalidAPIKey reports whether key is rejected. With no keys configured the
// API is open and every key, including none, is accepted.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if len(app.Config.ApiKeys) == 0 {
		return false
	}
	return key == "" || !slices.Contains(app.Config.ApiKeys, key)
}
