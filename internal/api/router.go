package api

import (
	"exrates/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(rateHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Handle("/metrics", promhttp.Handler())

	router.Post("/api/v1/rates/ingest", rateHandler.Ingest)
	router.Get("/api/v1/rates/{cur_id:[0-9]+}", rateHandler.GetRate)
	router.Get("/api/v1/rates/{cur_id:[0-9]+}/delta", rateHandler.GetDelta)
	return router
}
