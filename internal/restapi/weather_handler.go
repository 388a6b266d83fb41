package restapi

import (
	"net/http"

	"asemataulu.org/internal/models"
	"asemataulu.org/internal/stations"
	"asemataulu.org/internal/utils"
	"asemataulu.org/internal/weather"
)

func (api *RestAPI) weatherHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if ctx.Err() != nil {
		api.serverErrorResponse(w, r, ctx.Err())
		return
	}

	results, err := weather.FetchAll(ctx, api.Weather, api.Locations)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(results))
}

// weatherForCityHandler serves one configured city. Optional lat and lon query
// parameters replace the configured coordinates. FMI looks places up by name, so
// an override is rejected when FMI is the source.
func (api *RestAPI) weatherForCityHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	city := utils.ExtractParam(r, "city")
	if err := utils.ValidateCity(city); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"city": {err.Error()},
		})
		return
	}

	lat, lon, fieldErrors := utils.ParseCoordinateOverride(r.URL.Query())
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if lat != nil && api.Weather.Name() == weather.FMIName {
		api.validationErrorResponse(w, r, map[string][]string{
			"lat": {"coordinate override is not supported by the fmi source"},
		})
		return
	}

	loc, ok := stations.FindLocation(api.Locations, city)
	if !ok {
		api.sendNotFound(w, r)
		return
	}
	if lat != nil && lon != nil {
		loc.Lat, loc.Lon = *lat, *lon
	}

	result, err := api.Weather.Fetch(ctx, loc)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(result))
}
