package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-parking/internal/logging"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

// NewRouter mounts the API and operational endpoints. Metrics are served
// from gatherer.
func NewRouter(handler *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api/parking-lot", func(r chi.Router) {
		r.Get("/status", handler.GetStatus)
		r.Get("/slots/{slot}", handler.GetSlot)
		r.Post("/park", handler.ParkVehicle)
		r.Post("/reserve", handler.ReserveSlot)
		r.Post("/remove", handler.RemoveVehicle)
		r.Get("/search", handler.Search)
		r.Get("/stats", handler.GetStatistics)
		r.Get("/transactions", handler.GetTransactions)
		r.Get("/transactions/export", handler.ExportTransactions)
		r.Get("/rates", handler.GetRates)
		r.Get("/holidays", handler.GetHolidays)
		r.Post("/clear", handler.ClearAll)
		r.Get("/export", handler.Export)
	})

	return r
}

func NewServer(port string, handler *Handler, gatherer prometheus.Gatherer) *Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(handler, gatherer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx).Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
