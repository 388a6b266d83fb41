package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"asemataulu.org/internal/appconf"
	"asemataulu.org/internal/webui"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/departures", validateAPIKey(api, api.departuresHandler))
	router.Handler(http.MethodGet, "/api/weather", validateAPIKey(api, api.weatherHandler))
	router.Handler(http.MethodGet, "/api/weather/:city", validateAPIKey(api, api.weatherForCityHandler))
	router.Handler(http.MethodGet, "/api/current-time", validateAPIKey(api, api.currentTimeHandler))
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	if api.Config.Env != appconf.Production {
		ui := &webui.WebUI{App: api.Application}
		ui.SetWebUIRoutes(router)
	}

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// Routes returns the complete handler: the router behind the middleware chain.
// Outermost first: request logging, security headers, CORS, compression, rate
// limiting.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)

	var handler http.Handler = router
	handler = api.rateLimiter.Handler(handler)
	handler = CompressionMiddleware(handler)
	handler = NewCORSMiddleware(api.Config.AllowedOrigins)(handler)
	handler = securityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)

	return handler
}
