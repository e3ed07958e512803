package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"loan-workout/observability"
)

// NewRouter wires the workout and calculation endpoints. Every route is
// counted under its path template; mutating routes are rate limited.
func NewRouter(
	workouts *WorkoutHandler,
	calculation *CalculationHandler,
	limiter *RateLimiter,
	metrics *observability.Metrics,
) *mux.Router {
	r := mux.NewRouter()

	route := func(method, path string, h http.HandlerFunc, limited bool) {
		var handler http.Handler = h
		if limited {
			handler = RateLimitMiddleware(limiter)(handler)
		}
		r.Handle(path, metrics.Middleware(path)(handler)).Methods(method)
	}

	route(http.MethodPost, "/workouts", workouts.Open, true)
	route(http.MethodGet, "/workouts/{id}", workouts.Get, false)
	route(http.MethodPatch, "/workouts/{id}/inputs", workouts.EditInputs, true)
	route(http.MethodPost, "/workouts/{id}/discrepancy/{action}", workouts.ResolveDiscrepancy, true)
	route(http.MethodPost, "/workouts/{id}/options", workouts.CreateOption, true)
	route(http.MethodPut, "/workouts/{id}/options/current", workouts.SaveOption, true)
	route(http.MethodPost, "/workouts/{id}/options/{optionID:[0-9]+}/select", workouts.SelectOption, true)
	route(http.MethodDelete, "/workouts/{id}/options/{optionID:[0-9]+}", workouts.RemoveOption, true)
	route(http.MethodPost, "/workouts/{id}/suggestions", workouts.Suggest, true)
	route(http.MethodPost, "/calculate", calculation.Calculate, true)

	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}
