package restapi

import (
	"net/http"

	"asemataulu.org/internal/models"
)

func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if ctx.Err() != nil {
		api.serverErrorResponse(w, r, ctx.Err())
		return
	}

	departures, err := api.Departures.FetchDepartures(ctx)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	views := models.NewDepartureViews(departures, api.TimeZone)
	api.sendResponse(w, r, models.NewListResponse(views))
}
