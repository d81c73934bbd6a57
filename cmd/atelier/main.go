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

	"github.com/atelier-erp/atelier-erp/internal/app"
	"github.com/atelier-erp/atelier-erp/internal/catalog"
	"github.com/atelier-erp/atelier-erp/internal/fulfillment"
	"github.com/atelier-erp/atelier-erp/internal/platform/cache"
	"github.com/atelier-erp/atelier-erp/internal/platform/db"
	"github.com/atelier-erp/atelier-erp/internal/quotes"
	"github.com/atelier-erp/atelier-erp/internal/shared"
	"github.com/atelier-erp/atelier-erp/internal/stock"
	"github.com/atelier-erp/atelier-erp/jobs"
)

type planRefreshEnqueuer struct {
	client *jobs.Client
}

func (e planRefreshEnqueuer) EnqueuePlanRefresh(ctx context.Context, quoteID int64) error {
	_, err := e.client.EnqueuePlanRefresh(ctx, jobs.PlanRefreshPayload{QuoteID: quoteID})
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, plan cache disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	catalogRepo := catalog.NewRepository(pool)
	quoteRepo := quotes.NewRepository(pool)
	stockRepo := stock.NewRepository(pool)

	stockService := stock.NewService(stockRepo, auditLogger, idempotencyStore)
	quoteService := quotes.NewService(quoteRepo, auditLogger, idempotencyStore)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	planCache := fulfillment.NewPlanCache(redisClient, cfg.PlanCacheTTL)
	fulfillmentService := fulfillment.NewService(fulfillment.ServiceParams{
		QuoteStore:    quoteRepo,
		ArticleStore:  catalogRepo,
		StockStore:    stockRepo,
		Reserver:      stockService,
		Purchaser:     quoteService,
		Audit:         auditLogger,
		Refresher:     planRefreshEnqueuer{client: jobClient},
		Cache:         planCache,
		Logger:        logger,
		MaxIterations: cfg.AllocMaxIterations,
	})
	fulfillmentHandler := fulfillment.NewHandler(logger, fulfillmentService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		FulfillmentHandler: fulfillmentHandler,
		JobHandler:         jobHandler,
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
