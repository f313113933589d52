package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pharmapos/pharmapos/internal/app"
	"github.com/pharmapos/pharmapos/internal/catalog"
	"github.com/pharmapos/pharmapos/internal/platform/cache"
	"github.com/pharmapos/pharmapos/internal/platform/db"
	"github.com/pharmapos/pharmapos/internal/purchases"
	"github.com/pharmapos/pharmapos/internal/returns"
	"github.com/pharmapos/pharmapos/internal/sales"
	"github.com/pharmapos/pharmapos/internal/stock"
	"github.com/pharmapos/pharmapos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	stockRepo := stock.NewRepository(pool)
	stockCache := stock.NewCache(redisClient, 10*time.Minute)
	stockService := stock.NewService(stockRepo, stockCache)
	stockHandler := stock.NewHandler(logger, stockService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, stockService)
	salesHandler := sales.NewHandler(logger, salesService)

	purchasesRepo := purchases.NewRepository(pool)
	purchasesService := purchases.NewService(purchasesRepo)
	purchasesHandler := purchases.NewHandler(logger, purchasesService)

	returnsRepo := returns.NewRepository(pool)
	returnsService := returns.NewService(returnsRepo)
	returnsHandler := returns.NewHandler(logger, returnsService)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	// On-demand scan triggers need the queue, so they ride the same redis
	// availability as report caching.
	var jobsHandler *jobs.Handler
	if redisClient != nil {
		jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("asynq client unavailable, scan triggers disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := jobsClient.Close(); err != nil {
					logger.Warn("asynq client close", slog.Any("error", err))
				}
			}()
			jobsHandler = jobs.NewHandler(logger, jobsClient)
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		StockHandler:     stockHandler,
		SalesHandler:     salesHandler,
		PurchasesHandler: purchasesHandler,
		ReturnsHandler:   returnsHandler,
		CatalogHandler:   catalogHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
