package restapi

import (
	"net/http"
	"time"

	"asemataulu.org/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if api.TimeZone != nil {
		now = now.In(api.TimeZone)
	}

	api.sendResponse(w, r, models.NewOKResponse(models.NewCurrentTimeData(now)))
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
