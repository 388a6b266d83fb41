package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"asemataulu.org/internal/junat"
	"asemataulu.org/internal/logging"
	"asemataulu.org/internal/models"
	"asemataulu.org/internal/upstream"
	"asemataulu.org/internal/weather"
)

// invalidAPIKeyResponse sends a 401 Unauthorized response
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendStatus(w, r, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("path", r.URL.Path))
	api.sendStatus(w, r, http.StatusInternalServerError, "internal server error")
}

// upstreamErrorResponse sends a 502 for failures of the open-data feeds. The text
// names the feed and, when there was one, its HTTP status.
func (api *RestAPI) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error, text string) {
	attrs := []slog.Attr{slog.String("path", r.URL.Path)}
	if status, ok := upstream.StatusCode(err); ok {
		attrs = append(attrs, slog.Int("upstream_status", status))
	}
	logging.LogError(logging.FromContext(r.Context()), "upstream failure", err, attrs...)
	api.sendStatus(w, r, http.StatusBadGateway, text)
}

// errorResponse picks the response for an error returned by the departure
// pipeline or a weather source.
func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var te *upstream.TransportError
	var pe *upstream.ParseError

	switch {
	case errors.As(err, &te):
		text := fmt.Sprintf("%s unavailable", te.Source)
		if te.StatusCode != 0 {
			text = fmt.Sprintf("%s returned status %d", te.Source, te.StatusCode)
		}
		api.upstreamErrorResponse(w, r, err, text)
	case errors.As(err, &pe):
		api.upstreamErrorResponse(w, r, err, fmt.Sprintf("%s response could not be parsed", pe.Source))
	case errors.Is(err, weather.ErrNoData), errors.Is(err, junat.ErrNoTrainData):
		api.upstreamErrorResponse(w, r, err, "no data available")
	default:
		api.serverErrorResponse(w, r, err)
	}
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		Code        int                 `json:"code"`
		CurrentTime int64               `json:"currentTime"`
		Text        string              `json:"text"`
		Version     int                 `json:"version"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "invalid request",
		Version:     models.ResponseVersion,
		FieldErrors: fieldErrors,
	}

	setJSONResponseType(w)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode validation error response", err)
	}
}
