package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	bus, forwarder := initEvents(cfg, logger)
	if forwarder != nil {
		defer (func() { _ = forwarder.Close() })()
	}

	svc := buildServices(db, bus, logger)
	httpServer := api.NewHTTPServer(cfg.Server, svc, db, logging.Component(logger, "http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)

	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logging.Component(logger, "backup"))
	go backup.Start(ctx)

	return serve(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "server-main"), closer, nil
}

// initEvents counts every event and, when a broker is configured, mirrors
// events to it. Broker failures are logged and never fail a request.
func initEvents(cfg *config.Config, logger *zerolog.Logger) (*events.EventBus, *events.AMQPForwarder) {
	bus := events.NewEventBus()
	bus.OnError(func(ev *events.Event, err error) {
		logger.Warn().Err(err).Str("event", ev.Type).Msg("event handler failed")
	})
	bus.SubscribeAll(func(ev *events.Event) error {
		metrics.IncEvent(ev.Type)
		return nil
	})

	if cfg.Events.AMQPURL == "" {
		return bus, nil
	}

	fwd, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, logging.Component(logger, "amqp"))
	if err != nil {
		logger.Warn().Err(err).Msg("rabbitmq unavailable, events stay in-process")
		return bus, nil
	}
	bus.SubscribeAll(fwd.Handle)
	logger.Info().Str("exchange", cfg.Events.Exchange).Msg("rabbitmq connected")
	return bus, fwd
}

func buildServices(db *database.DB, bus *events.EventBus, logger *zerolog.Logger) api.Services {
	svcLogger := logging.Component(logger, "service")

	bookings := service.NewBookingService(db, bus, nil, svcLogger)
	return api.Services{
		Users:    service.NewUserService(db, svcLogger),
		Items:    service.NewItemService(db, bookings, bus, nil, svcLogger),
		Bookings: bookings,
		Requests: service.NewRequestService(db, bus, nil, svcLogger),
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	logger.Info().Int("http_port", cfg.Server.Port).Msg("server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("http server stopped")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
