// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"casetracker/internal/cache"
	"casetracker/internal/cases"
	"casetracker/internal/handlers"
	"casetracker/internal/middleware"
	"casetracker/internal/router"
	"casetracker/internal/stats"
	"casetracker/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		statsCache *cache.StatsCache
		limiter    middleware.Allower
	)
	if cfg.CacheEnabled {
		var client *redis.Client
		client, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connect to valkey: %w", err)
		}
		defer client.Close()

		statsCache = cache.NewStatsCache(client, cfg.StatsCacheTTL)
		if cfg.RateLimitRequests > 0 {
			limiter = cache.NewLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow)
		}
	} else {
		slog.Warn("valkey disabled, stats caching and rate limiting are off")
	}

	categoryStore := store.NewCategoryStore(db)
	caseStore := store.NewCaseStore(db)

	r := router.New(
		handlers.NewCases(cases.NewService(categoryStore, caseStore), caseStore, statsCache),
		handlers.NewStats(stats.NewEngine(categoryStore, caseStore), statsCache),
		router.Options{
			Limiter:           limiter,
			TrustActorHeader:  cfg.TrustActorHeader,
			TrustProxyHeaders: cfg.TrustProxyHeaders,
		},
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
