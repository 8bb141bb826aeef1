package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/auth"
	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/anonto42/nano-midea/interactions/internal/realtime"
	"github.com/anonto42/nano-midea/interactions/internal/router"
	"github.com/anonto42/nano-midea/interactions/pkg/config"
	"github.com/anonto42/nano-midea/interactions/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var repos router.Repositories
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		repos = router.MemoryRepositories()
	default:
		db, err := config.InitDB(ctx, cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize databases")
		}
		defer db.CloseDB()

		if err := router.Migrate(ctx, db.Postgres, db.Database); err != nil {
			logger.WithError(err).Fatal("Failed to migrate databases")
		}
		repos = router.SQLRepositories(db.Postgres, db.Database)
	}

	// Credential verification
	var verifier auth.Verifier
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize Firebase")
		}
		verifier = auth.NewFirebaseVerifier(firebaseApp.AuthClient, repos.Users)
	default:
		verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	bus := events.NewBus(logger)
	defer bus.Close()

	svc := router.NewServices(repos, bus, verifier, realtime.GatewayConfig{
		SendBuffer:      cfg.WSSendBuffer,
		EventsPerSecond: cfg.WSEventsPerSecond,
		EventBurst:      cfg.WSEventBurst,
		AllowedOrigins:  cfg.WSAllowedOrigins,
	}, m, logger)

	broadcasterDone, err := svc.Broadcaster.Start(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start broadcaster")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup global middleware
	router.SetupMiddleware(e, logger)

	// Setup routes and dependencies
	router.SetupRoutes(e, svc, verifier, logger)

	// Validator
	e.Validator = svc.Validator

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("port", cfg.MetricsPort).Info("Metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("HTTP server shutdown failed")
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Metrics server shutdown failed")
		}

		select {
		case <-broadcasterDone:
		case <-shutdownCtx.Done():
			logger.Warn("Broadcaster did not stop before the shutdown deadline")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
