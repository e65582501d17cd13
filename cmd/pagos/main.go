package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagos/internal/backend"
	"pagos/internal/cache"
	"pagos/internal/cli"
	apphttp "pagos/internal/http"
	applog "pagos/internal/log"
	"pagos/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	// Build the configured store and optional event client.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	}()

	// Share view cache: process-local LRU by default, Redis when shared
	// across instances.
	var shareCache cache.Store
	switch cfg.CacheBackend {
	case "redis":
		redisStore := cache.NewRedisStore(cfg.RedisAddr, cfg.ShareCacheTTL)
		if err := redisStore.Ping(context.Background()); err != nil {
			logger.Error("Failed to reach Redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer redisStore.Close()
		shareCache = redisStore
		logger.Info("Initialized Redis share cache", "addr", cfg.RedisAddr)
	default:
		shareCache = cache.NewLRUStore(128, cfg.ShareCacheTTL)
		logger.Info("Initialized in-memory share cache", "ttl", cfg.ShareCacheTTL)
	}

	var events services.EventPublisher
	if result.Events != nil {
		events = result.Events
	}
	service := services.NewDebtService(result.Store, events)

	// The snapshot store mirrors the collection for share views; it runs
	// until shutdown.
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshot := services.NewSnapshotStore()
	go func() {
		if err := snapshot.Run(runCtx, result.Store); err != nil && err != context.Canceled {
			logger.Error("Snapshot feed stopped", "error", err)
		}
	}()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:          ":" + cfg.Port,
		Service:       service,
		Snapshot:      snapshot,
		ShareCache:    shareCache,
		AccessPIN:     cfg.AccessPIN,
		SessionSecret: cfg.SessionSecret,
		Logger:        logger.WithComponent(applog.ComponentHTTP),
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // event stream writes for the connection lifetime
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting pagos server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-runCtx.Done()
	logger.Info("Server stopped gracefully")
}
