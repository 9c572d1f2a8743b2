// Package main is the entry point for the salesboard API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesboard/internal/domain/reports"
	"salesboard/internal/infrastructure/cache"
	v1 "salesboard/internal/infrastructure/http/v1"
	"salesboard/internal/infrastructure/storage/postgres"
	"salesboard/internal/infrastructure/supabase"
	"salesboard/pkg/logger"
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

	ctx := context.Background()
	log.Info("starting salesboard server")

	// --- Data source ---
	// DATABASE_URL selects the direct-connection source; otherwise the
	// hosted REST gateway is used with credentials from the environment.
	var source reports.Source
	var ping func(ctx context.Context) error

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		source = postgres.NewSource(pool)
		ping = pool.Ping
		log.Info("database connection established")
	} else {
		client, err := supabase.New(supabase.Config{
			URL:      mustEnv("SUPABASE_URL"),
			APIKey:   mustEnv("SUPABASE_ANON_KEY"),
			Email:    mustEnv("SUPABASE_EMAIL"),
			Password: mustEnv("SUPABASE_PASSWORD"),
		})
		if err != nil {
			log.Fatalw("failed to create data service client", "error", err)
		}
		source = client
		log.Info("using hosted data service")
	}

	// --- Bundle cache ---
	ttl := getEnvDuration("CACHE_TTL", cache.DefaultTTL)
	bundleCache, err := cache.New(ttl)
	if err != nil {
		log.Fatalw("failed to create bundle cache", "error", err)
	}
	log.Infow("bundle cache initialized", "ttl", ttl)

	// --- Reports service ---
	service := reports.NewService(source, bundleCache)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:     log,
		Service:    service,
		APIKeyHash: getEnv("API_KEY_HASH", ""),
		Ping:       ping,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
