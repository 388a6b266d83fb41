package restapi

import (
	"encoding/json"
	"net/http"

	"asemataulu.org/internal/logging"
	"asemataulu.org/internal/models"
)

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(w)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode response", err)
	}
}

// sendStatus writes an envelope without data.
func (api *RestAPI) sendStatus(w http.ResponseWriter, r *http.Request, code int, text string) {
	writeStatus(w, r, code, text)
}

func writeStatus(w http.ResponseWriter, r *http.Request, code int, text string) {
	setJSONResponseType(w)
	w.WriteHeader(code)

	response := models.ResponseModel{
		Code:        code,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        text,
		Version:     models.ResponseVersion,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode status response", err)
	}
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendStatus(w, r, http.StatusNotFound, "resource not found")
}
