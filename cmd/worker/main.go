// Package main is the entry point for the Tasto background worker.
//
// The worker periodically refreshes stale ingredient analytics and
// captures daily inventory snapshots for every tenant. It shares the
// analytics service with the API server but runs no HTTP surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ItsEgzix/Tasto-backend/internal/domain/analytics"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres/analytics_repo"
	"github.com/ItsEgzix/Tasto-backend/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log = log.WithComponent("worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting tasto worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	analyticsRepo := analytics_repo.NewAnalyticsRepo(txManager)
	analyticsService := analytics.NewService(analyticsRepo)

	refreshInterval := getEnvDuration("ANALYTICS_REFRESH_INTERVAL", 5*time.Minute)
	refreshBatch := getEnvInt("ANALYTICS_REFRESH_BATCH", 50)
	snapshotInterval := getEnvDuration("SNAPSHOT_INTERVAL", 24*time.Hour)
	statsInterval := getEnvDuration("POOL_STATS_INTERVAL", time.Minute)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshed, err := analyticsService.RefreshStale(ctx, refreshBatch)
				if err != nil {
					log.Warnw("analytics refresh failed", "error", err)
					continue
				}
				if refreshed > 0 {
					log.Infow("refreshed stale analytics", "count", refreshed)
				}
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(snapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				saved, err := analyticsService.SnapshotAllTenants(ctx)
				if err != nil {
					log.Warnw("snapshot run failed", "error", err)
					continue
				}
				log.Infow("daily snapshots captured", "tenants", saved)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(ctx, pool.Pool)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	wg.Wait()
	log.Info("worker stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
