package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/tcg-client/internal/config"
	"github.com/Sternrassler/tcg-client/internal/server"
	"github.com/Sternrassler/tcg-client/pkg/client"
	"github.com/Sternrassler/tcg-client/pkg/logging"
	"github.com/Sternrassler/tcg-client/pkg/snapshot"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Pretty = cfg.LogPretty
	logger := logging.Setup(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Proxy stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	redisClient, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info().Msg("Connected to Redis")
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-memory cache without shared quota tracking")
	}

	cardClient, err := client.New(clientConfig(cfg, redisClient))
	if err != nil {
		return fmt.Errorf("create card client: %w", err)
	}
	defer cardClient.Close()

	api := server.New(cardClient, server.Options{
		JWTSecret:       cfg.JWTSecret,
		DefaultPageSize: cfg.DefaultPageSize,
	}, logging.NewLogger("server"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("user_agent", cfg.UserAgent).
			Str("api", cfg.APIBaseURL).
			Msg("Starting card proxy")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// connectRedis returns nil when url is empty. Both redis:// URLs and plain
// host:port addresses are accepted.
func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts := &redis.Options{Addr: url}
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to Redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

func clientConfig(cfg *config.Config, rdb *redis.Client) client.Config {
	cc := client.DefaultConfig(cfg.UserAgent)
	cc.BaseURL = cfg.APIBaseURL
	cc.APIKey = cfg.APIKey
	cc.RequestsPerSecond = cfg.APIRPS
	cc.Timeout = cfg.APITimeout
	cc.Retry.MaxAttempts = cfg.APIMaxRetries
	cc.PageSize = cfg.UpstreamPages
	cc.Redis = rdb
	cc.CacheRetention = cfg.CacheRetention
	cc.SingleFlight = cfg.CacheSingleFlight
	if cfg.SnapshotDir != "" {
		cc.Snapshot = snapshot.Dir(cfg.SnapshotDir)
	}
	return cc
}
