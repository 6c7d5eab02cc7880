package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/optbazar/optbazar/internal/admin"
	"github.com/optbazar/optbazar/internal/app"
	"github.com/optbazar/optbazar/internal/auth"
	"github.com/optbazar/optbazar/internal/cart"
	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/observability"
	"github.com/optbazar/optbazar/internal/orders"
	"github.com/optbazar/optbazar/internal/platform/cache"
	"github.com/optbazar/optbazar/internal/platform/kafka"
	"github.com/optbazar/optbazar/internal/shared"
	"github.com/optbazar/optbazar/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	policy, err := orders.ParsePolicy(cfg.OrderStatusPolicy)
	if err != nil {
		logger.Error("order status policy", slog.Any("error", err))
		os.Exit(1)
	}

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Error("open storage", slog.String("driver", cfg.StorageDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer storage.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, redisClient)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	catalogService := catalog.NewService(storage.Products, cache.NewVersioned(redisClient, "catalog", cfg.CatalogCacheTTL), logger)
	if cfg.SeedSampleData {
		if err := catalogService.Seed(ctx); err != nil {
			logger.Warn("seed catalog", slog.Any("error", err))
		}
	}

	authService := auth.NewService(storage.Admins, tokens)
	if cfg.AdminUsername != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPasswordHash)
		if err != nil {
			logger.Warn("bootstrap admin", slog.Any("error", err))
		} else if created {
			logger.Info("bootstrap admin created", slog.String("username", cfg.AdminUsername))
		}
	}
	authMiddleware := auth.Middleware{Tokens: tokens, Logger: logger}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	idempotency := shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
	intake := orders.NewIntake(storage.Orders, catalogService, idempotency, jobClient, metrics, logger)
	orderService := orders.NewService(storage.Orders, orders.NewStatusMachine(policy), metrics)
	gateway := admin.NewGateway(catalogService, orderService, storage.Audit, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		CatalogHandler: catalog.NewHandler(logger, catalogService),
		CartHandler:    cart.NewHandler(logger, catalogService),
		OrdersHandler:  orders.NewHandler(logger, intake),
		AuthHandler:    auth.NewHandler(logger, authService, authMiddleware),
		AdminHandler:   admin.NewHandler(logger, gateway),
		JobsHandler:    jobs.NewHandler(inspector, logger),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
		Health: func(r *http.Request) error {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			return storage.Ping(ctx)
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("storage", storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.KafkaEnabled() {
		client := kafka.NewClient(cfg.KafkaBrokers)
		reader := client.NewReader(cfg.KafkaExternalTopic, cfg.KafkaGroupID)
		consumer := orders.NewConsumer(reader, intake, logger)
		group.Go(func() error {
			logger.Info("starting external order consumer", slog.String("topic", cfg.KafkaExternalTopic))
			err := consumer.Run(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("runtime", slog.Any("error", err))
		os.Exit(1)
	}
}
