// Command server runs the calendar-backend HTTP API: storage, cache,
// pub/sub, the cached repository decorator, the SSR worker pool, and the
// event ring are constructed once here and threaded into internal/api's
// router. Construction is explicit (load config, build dependencies,
// construct router, listen with graceful shutdown) rather than routed
// through a DI container, since the dependency graph is small.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"calendar-backend/internal/api"
	"calendar-backend/internal/authn"
	"calendar-backend/internal/cache"
	cachememory "calendar-backend/internal/cache/memory"
	cacheremote "calendar-backend/internal/cache/remote"
	"calendar-backend/internal/config"
	"calendar-backend/internal/eventstream"
	"calendar-backend/internal/observability"
	"calendar-backend/internal/pubsub"
	"calendar-backend/internal/repository"
	"calendar-backend/internal/ssr"
	"calendar-backend/internal/storage"
	"calendar-backend/internal/storage/dynamostore"
	"calendar-backend/internal/storage/memorystore"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config"
	}
	cfgPtr, err := config.LoadWithLoader(configPath)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	cfg := *cfgPtr

	logger, err := buildLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewCollector(cfg.Metrics.Namespace)

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracing(observability.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			Environment: string(cfg.Environment),
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Fatal("failed to init tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer shutdownCancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracing shutdown error", zap.Error(err))
			}
		}()
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to build storage backend", zap.Error(err))
	}

	cacheBackend, redisClient, err := buildCache(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build cache backend", zap.Error(err))
	}

	ps := buildPubSub(cfg, redisClient, logger)

	ring := eventstream.NewRing(cfg.EventRing.Capacity)
	publisher := eventstream.NewPublisher(ring, ps, logger).WithCounter(metrics)
	producer := eventstream.NewProducer(ring, ps, logger)

	repo := repository.New(store, cacheBackend, publisher, logger)

	ssrManager, err := buildSSR(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build SSR pool", zap.Error(err))
	}
	if cfg.SSR.WarmUpOnStartup {
		ssrManager.WarmUp(ctx)
	}

	handlers := api.New(repo, ssrManager, producer, metrics, logger)
	router := api.NewRouter(handlers, authn.StaticVerifier{}, metrics, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("address", srv.Addr), zap.String("environment", string(cfg.Environment)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	ssrManager.Shutdown()
	log.Println("server stopped")
}

func buildLogger(env config.Environment) (*zap.Logger, error) {
	switch env {
	case config.Production:
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}

func buildStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Provider {
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return dynamostore.New(client, cfg.Storage.DynamoDBTable), nil
	default:
		return memorystore.New(), nil
	}
}

// buildCache returns the cache.Cache backend and, when Redis-backed, the
// underlying *redis.Client so buildPubSub can reuse the same connection.
func buildCache(cfg config.Config, logger *zap.Logger) (cache.Cache, *redis.Client, error) {
	if cfg.Cache.Provider != "redis" {
		return cachememory.New(cfg.Cache.MaxItems, logger), nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		PoolSize: cfg.Cache.Redis.PoolSize,
	})
	return cacheremote.New(client, "calendar-cache", logger), client, nil
}

func buildPubSub(cfg config.Config, redisClient *redis.Client, logger *zap.Logger) pubsub.PubSub {
	if cfg.Cache.Provider == "redis" && redisClient != nil {
		return pubsub.NewRemote(redisClient, logger)
	}
	return pubsub.NewLocal()
}

func buildSSR(cfg config.Config, logger *zap.Logger) (*ssr.Manager, error) {
	pool, err := ssr.NewPool(ssr.Config{
		WorkerCount:   cfg.SSR.WorkerCount,
		MaxPending:    cfg.SSR.MaxPending,
		RenderTimeout: cfg.SSR.RenderTimeout,
		NodeEnv:       cfg.SSR.NodeEnv,
	}, cfg.SSR.BundlePath, logger)
	if err != nil {
		return nil, err
	}
	return ssr.NewManager(pool), nil
}
