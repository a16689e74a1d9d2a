package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/crm-dashboard/internal/api"
	"github.com/ignite/crm-dashboard/internal/config"
	"github.com/ignite/crm-dashboard/internal/crm"
	"github.com/ignite/crm-dashboard/internal/dashboard"
	"github.com/ignite/crm-dashboard/internal/importer"
	"github.com/ignite/crm-dashboard/internal/pkg/logger"
)

func main() {
	cfg, err := config.LoadFromEnv("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	ctx := context.Background()

	// Cache snapshots live in Redis when an address is configured; otherwise
	// they stay in process memory and die with it.
	var redisClient *redis.Client
	var store dashboard.Store = dashboard.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("main: redis unreachable, cache snapshots stay in memory",
				"addr", cfg.Redis.Addr, "error", err)
		}
		store = dashboard.NewRedisStore(redisClient, "dashboard:cache")
	}

	crmClient := crm.NewClient(crm.Config{
		BaseURL:    cfg.CRM.BaseURL,
		APIKey:     cfg.CRM.APIKey,
		ClientID:   cfg.CRM.ClientID,
		Timeout:    cfg.CRM.Timeout(),
		MaxRetries: cfg.CRM.MaxRetries,
	})

	cache := dashboard.NewCache(ctx, store, cfg.Cache.TTL())
	svc := dashboard.NewService(cache, crmClient)
	imports := importer.NewManager(cfg.Import.MaxSizeBytes(), crmClient)

	handlers := api.NewHandlers(svc, crmClient, imports, cfg.Import.MaxSizeBytes())
	handlers.SetHealthChecker(api.NewHealthChecker(redisClient))
	server := api.NewServer(handlers, cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("main: server listening", "addr", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("main: server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("main: shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("main: shutdown failed", "error", err)
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}
}
