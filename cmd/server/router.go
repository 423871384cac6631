package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// NewRouter serves the operational endpoints next to the API. Every path
// other than /healthz and /metrics belongs to apiRouter.
func NewRouter(apiRouter http.Handler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metricsHandler)
	r.Mount("/", apiRouter)

	return r
}
