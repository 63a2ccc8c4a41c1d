package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"smart-parking/internal/config"
	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
	"smart-parking/internal/server"
	"smart-parking/internal/storage"
	"smart-parking/internal/tariff"
)

var (
	mode = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port = flag.String("port", "", "Port for HTTP server (default $PORT or 8080)")
)

type app struct {
	cfg       *config.Config
	telemetry *parking.TelemetryProvider
	service   *parking.InstrumentedService
	handler   *server.Handler
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.IsDevelopment(), cfg.LogLevel)
	if *port == "" {
		*port = cfg.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("Failed to start parking service")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		a.runCLI(ctx, cancel, sigChan)
	case "server":
		a.runServer(ctx, cancel, sigChan)
	case "both":
		a.runBoth(ctx, cancel, sigChan)
	default:
		logging.Logger().Fatal().Str("mode", *mode).Msg("Invalid mode. Must be cli, server, or both")
	}
}

// newApp wires calendar, tariff, registry, store and facade, then rehydrates
// the registry from the data file. A data file that exists but cannot be
// read stops startup.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	telemetry, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:    cfg.OTelServiceName,
		Endpoint:       cfg.OTelEndpoint,
		ExportInterval: cfg.OTelExportInterval,
	})
	if err != nil {
		return nil, err
	}

	calendar := tariff.LoadCalendarOrDefault(ctx, cfg.HolidayFile)
	rates, err := tariff.LoadRates(cfg.TariffFile)
	if err != nil {
		return nil, err
	}
	policy, err := tariff.NewPolicy(rates, calendar)
	if err != nil {
		return nil, err
	}

	lot := parking.NewParkingLot(cfg.Capacity, policy)
	store := storage.NewFileStore(cfg.DataFile, cfg.Location)
	svc := parking.NewService(lot, store, parking.WithFlushRetry(cfg.FlushMaxTries, 0), parking.WithLocation(cfg.Location))
	if err := svc.Restore(ctx); err != nil {
		return nil, err
	}

	instrumented, err := parking.NewInstrumentedService(svc, telemetry)
	if err != nil {
		return nil, err
	}
	prometheus.MustRegister(parking.NewCollector(svc))

	logging.Info(ctx).
		Int("capacity", cfg.Capacity).
		Str("data_file", cfg.DataFile).
		Int("holidays", calendar.Len()).
		Str("timezone", cfg.Location.String()).
		Msg("Parking service ready")

	return &app{
		cfg:       cfg,
		telemetry: telemetry,
		service:   instrumented,
		handler:   server.NewHandler(instrumented, cfg.OTelServiceName),
	}, nil
}

func (a *app) newShell() *parking.Shell {
	return parking.NewShell(a.service, a.telemetry, os.Stdin, os.Stdout, a.cfg.Location)
}

func (a *app) newServer() *server.Server {
	return server.NewServer(*port, a.handler, prometheus.DefaultGatherer)
}

func (a *app) runCLI(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx).Msg("Shutting down...")
		cancel()
	}()

	a.newShell().Run(ctx)

	a.shutdownTelemetry()
}

func (a *app) runServer(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	srv := a.newServer()

	go func() {
		<-sigChan
		logging.Info(ctx).Msg("Received shutdown signal...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx).Err(err).Msg("Server shutdown error")
		}

		cancel()
	}()

	logging.Info(ctx).Str("port", *port).Msg("Starting server mode")
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx).Err(err).Msg("Server error")
	}

	a.shutdownTelemetry()
}

func (a *app) runBoth(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	srv := a.newServer()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		a.newShell().Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Info(ctx).Msg("Received shutdown signal...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx).Err(err).Msg("Server shutdown error")
		}

		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx).Err(err).Msg("Server error")
		}
	case <-cliDone:
		logging.Info(ctx).Msg("CLI exited")
	case <-ctx.Done():
		logging.Info(ctx).Msg("Context cancelled")
	}

	a.shutdownTelemetry()
}

func (a *app) shutdownTelemetry() {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logging.Info(shutdownCtx).Msg("Shutting down telemetry...")
	if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx).Err(err).Msg("Error shutting down telemetry")
	}
}
