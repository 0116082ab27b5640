package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"staybook/server/config"
	"staybook/server/internal/api"
	"staybook/server/internal/cache"
	"staybook/server/internal/catalog"
	"staybook/server/internal/database"
	"staybook/server/internal/geocoding"
	"staybook/server/internal/pricing"
	"staybook/server/internal/processor"
	"staybook/server/internal/queue"
	"staybook/server/internal/scheduler"
	"staybook/server/internal/search"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
	} else {
		logger.SetLevel(level)
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	store := catalog.NewStore()
	searchCache := cache.NewSearchCache(cfg.Cache.MaxSize, cfg.Cache.TTL, logger)
	defer searchCache.Stop()

	refresher := scheduler.NewCatalogRefresher(db, store, searchCache, cfg.Catalog.RefreshInterval, logger)
	if err := refresher.RefreshNow(); err != nil {
		logger.WithError(err).Fatal("Failed to load catalog")
	}

	importQueue := queue.NewListingQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(db.DB(), importQueue, cfg, logger)
	batchProcessor.OnStored(func(stored int) {
		if err := refresher.RefreshNow(); err != nil {
			logger.WithError(err).WithField("stored", stored).Error("Failed to refresh catalog after import")
		}
	})

	if cfg.Geocoding.Enabled {
		batchProcessor.SetLocator(geocoding.NewGeocoder(
			cfg.Geocoding.BaseURL,
			cfg.Geocoding.CacheDir,
			logger,
			geocoding.WithMinInterval(cfg.Geocoding.MinInterval),
		))
	}

	batchProcessor.Start()
	importQueue.Start()
	refresher.Start()

	engine := pricing.NewEngine(cfg.Pricing.PlatformFeeRate)
	matcher := search.NewMatcher(
		search.WithPageSize(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize),
		search.WithParallelFilter(cfg.Search.FilterWorkers, cfg.Search.ParallelThreshold),
	)

	handler := api.NewHandler(cfg, store, engine, matcher, searchCache, importQueue, db, refresher, logger)

	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	api.SetupRoutes(router, handler, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	refresher.Stop()
	batchProcessor.Stop()
	if err := importQueue.Close(); err != nil {
		logger.WithError(err).Error("Failed to close import queue")
	}
	logger.Info("Server stopped")
}
