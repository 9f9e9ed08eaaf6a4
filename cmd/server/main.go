package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dermalens/backend/config"
	httpDelivery "github.com/dermalens/backend/internal/delivery/http"
	"github.com/dermalens/backend/internal/domain"
	"github.com/dermalens/backend/internal/infrastructure/cache"
	"github.com/dermalens/backend/internal/infrastructure/dataset"
	"github.com/dermalens/backend/internal/metrics"
	"github.com/dermalens/backend/internal/usecase"
)

// closableCache is a cache backend that owns resources
type closableCache interface {
	domain.CacheRepository
	io.Closer
}

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	setupLogger(cfg.Log)
	log.Info().
		Str("env", cfg.Server.Environment).
		Str("dataset_source", cfg.Dataset.Source).
		Str("cache", cfg.Cache.Type).
		Msg("starting dermalens backend")

	// 3. Load the product catalog once; it is read-only afterwards
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	source, closeSource, err := newProductSource(cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open dataset source")
	}
	catalog, err := source.Load(loadCtx)
	loadCancel()
	closeSource()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load product catalog")
	}
	metrics.CatalogProducts.Set(float64(catalog.Len()))

	// 4. Cache
	summaryCache, err := newCache(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer summaryCache.Close()

	// 5. Services
	recommender := usecase.NewRecommendationService(catalog, usecase.RecommendConfig{
		TopN:          cfg.Recommend.TopN,
		HistogramBins: cfg.Recommend.HistogramBins,
	})
	summarizer := usecase.NewSummaryService(catalog, summaryCache, usecase.SummaryConfig{
		CacheTTL:      cfg.Cache.TTL,
		PreviewRows:   cfg.Recommend.PreviewRows,
		HistogramBins: cfg.Recommend.SummaryHistogramBins,
		TopK:          cfg.Recommend.TopK,
	})

	// 6. HTTP
	handler := httpDelivery.NewHandler(catalog, recommender, summarizer)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Int("products", catalog.Len()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 7. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// newProductSource picks the catalog loader. The returned func releases its resources.
func newProductSource(cfg config.DatasetConfig) (domain.ProductSource, func(), error) {
	switch cfg.Source {
	case "postgres":
		db, err := dataset.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return dataset.NewPostgresSource(db, cfg.PostgresTable), func() { _ = db.Close() }, nil
	default:
		return dataset.NewCSVSource(cfg.Path), func() {}, nil
	}
}

func newCache(cfg config.CacheConfig) (closableCache, error) {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, "dermalens")
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	}
	return cache.NewMemoryCache(10 * time.Minute), nil
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
