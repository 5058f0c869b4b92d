package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travel-desk/bookingcart/internal/api"
	"travel-desk/bookingcart/internal/config"
	"travel-desk/bookingcart/internal/jobs"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/routes"
	"travel-desk/bookingcart/internal/workers"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("BookingCart starting up",
		"environment", cfg.AppEnv,
		"storage", cfg.Storage.Driver,
		"cache", cfg.Cache.Driver,
		"events", cfg.Events.Driver,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}
	defer deps.Close()

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router) // Mount Chi router at root
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Duffel.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if deps.Services.Applications.Available() {
		jobs.InitializeJobs(ctx, deps.Services.Applications, metricsReg, cfg.Jobs.StatsInterval)
	}
	if deps.Queue != nil {
		workers.InitWorkers(ctx, deps.Queue, cfg.Events.Stream, cfg.Events.Workers, metricsReg)
	}

	go func() {
		logging.Info("Server starting", "port", cfg.Server.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
