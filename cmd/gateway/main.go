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

	"shareit/internal/config"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
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

	client, err := gateway.NewServerClient(
		cfg.Gateway.ServerURL,
		cfg.Gateway.RequestTimeout,
		gateway.RetryPolicy{
			MaxAttempts:  cfg.Gateway.Retry.MaxAttempts,
			InitialDelay: cfg.Gateway.Retry.BaseDelay,
			MaxDelay:     cfg.Gateway.Retry.MaxDelay,
		},
		logging.Component(logger, "server-client"),
	)
	if err != nil {
		logger.Error().Err(err).Msg("create server client")
		return err
	}

	limiter, redisClient := initLimiter(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	gw := gateway.New(cfg.Gateway, client, gateway.NewValidator(nil), limiter, logging.Component(logger, "gateway"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)

	return serve(ctx, gw, cfg, logger)
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

	return cfg, logging.Component(baseLogger, "gateway-main"), closer, nil
}

// initLimiter picks the rate limiter backend. With Redis configured the
// counters are shared between gateway replicas; an in-memory limiter takes
// over while Redis is unreachable.
func initLimiter(cfg *config.Config, logger *zerolog.Logger) (ratelimit.Limiter, *redis.Client) {
	rl := cfg.Gateway.RateLimit
	if rl.RPS <= 0 {
		logger.Info().Msg("rate limiting disabled")
		return ratelimit.Noop{}, nil
	}

	memory := ratelimit.NewMemoryLimiter(rl.RPS, rl.Burst)
	if cfg.Redis.Address == "" {
		return memory, nil
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ratelimit.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, starting on in-memory limiter")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	primary := ratelimit.NewRedisLimiter(client, ratelimit.WindowLimit(rl), rl.Window)
	return ratelimit.NewFailoverLimiter(primary, memory, logging.Component(logger, "ratelimit")), client
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, gw *gateway.Gateway, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			errCh <- err
		}
	}()

	logger.Info().Int("http_port", cfg.Gateway.Port).Str("server_url", cfg.Gateway.ServerURL).Msg("gateway started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("gateway stopped")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("gateway shutdown")
	}

	logger.Info().Msg("gateway stopped")
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
