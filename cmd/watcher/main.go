package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketwatch/internal/api"
	"marketwatch/internal/config"
	"marketwatch/internal/fetch"
	"marketwatch/internal/monitoring"
	"marketwatch/internal/notify"
	"marketwatch/internal/scheduler"
	"marketwatch/internal/scrape"
	"marketwatch/internal/storage"
	"marketwatch/internal/watcher"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	var store storage.Store
	var dbPinger api.Pinger
	if cfg.DatabaseURL != "" {
		pgStore, err := storage.NewPostgresStore(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pgStore.Close()
		store = pgStore
		dbPinger = pgStore
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store; listings will not survive a restart")
		store = storage.NewMemoryStore()
	}

	var seen *storage.SeenCache
	var cachePinger api.Pinger
	if cfg.RedisAddr != "" {
		seen = storage.NewSeenCache(cfg.RedisAddr, time.Duration(cfg.SeenCacheTTLHours)*time.Hour)
		cachePinger = seen
	}

	// Initialize Source Adapters and Aggregator
	metrics := monitoring.NewMetrics()
	client := fetch.NewClient(time.Duration(cfg.FetchTimeout) * time.Second)
	scrapers := []scrape.Scraper{
		scrape.NewMercariScraper(client, logger),
		scrape.NewYahooAuctionScraper(client, logger),
	}
	aggregator := scrape.NewAggregator(scrapers, cfg.ScrapeWorkers, metrics, logger)

	// Initialize Notifier (optional)
	var notifier watcher.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			notifier = tg
		}
	} else {
		logger.Info("telegram not configured, new listings will only be logged")
	}

	// Initialize Cycle Orchestrator
	w, err := watcher.New(aggregator, store, notifier, seen, metrics, logger)
	if err != nil {
		logger.Fatal("could not build watcher", zap.Error(err))
	}

	// Start the hourly scheduler (runs one cycle immediately)
	sched := scheduler.New(func() { w.RunCycle(context.Background()) }, cfg.ScrapeIntervalHours, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("could not start scheduler", zap.Error(err))
	}

	// Initialize API Server
	server := api.NewServer(cfg, store, w, dbPinger, cachePinger, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sched.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
