package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/cache"
	"github.com/avax-reflights/refundservice/internal/config"
	"github.com/avax-reflights/refundservice/internal/events"
	"github.com/avax-reflights/refundservice/internal/log"
	"github.com/avax-reflights/refundservice/internal/metrics"
	"github.com/avax-reflights/refundservice/internal/policy"
	"github.com/avax-reflights/refundservice/internal/refund"
	"github.com/avax-reflights/refundservice/internal/server"
	"github.com/avax-reflights/refundservice/internal/service"
	"github.com/avax-reflights/refundservice/internal/tracing"
)

// App represents the refund service application
type App struct {
	config        *config.Config
	logger        *zap.Logger
	redisClient   *redis.Client
	publisher     events.Publisher
	httpServer    *server.Server
	metricsServer *metrics.Server
	stopTracing   func()
}

// New creates a new application instance
func New(cfg *config.Config) (*App, error) {
	if err := log.Init(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := log.L(context.Background())

	logger.Info("Initializing refund service",
		zap.String("app_name", cfg.AppName),
		zap.Int("http_port", cfg.Server.Port))

	stopTracing := func() {}
	if cfg.Tracing.Enabled {
		cleanup, err := tracing.Init(tracing.Config{
			ServiceName:    cfg.AppName,
			ServiceVersion: "1.0.0",
			JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
			SamplingRatio:  cfg.Tracing.SamplingRatio,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		stopTracing = cleanup
	}

	// Redis is optional; without it the provider skips the cache layer
	var redisClient *redis.Client
	var policyCache *cache.PolicyCache
	if cfg.Redis.Enabled {
		client, err := cache.Connect(cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis initialization failed, continuing without policy cache",
				zap.Error(err),
				zap.String("redis_addr", cfg.Redis.GetRedisAddr()))
		} else {
			redisClient = client
			policyCache = cache.NewPolicyCache(client, cfg.PolicyService.CacheTTL)
		}
	}

	// Kafka is optional; without it submissions are accepted but only logged
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Kafka publisher: %w", err)
		}
		publisher = kafkaPublisher
	} else {
		logger.Warn("Kafka disabled, refund submissions will not reach the backend")
	}

	remote := policy.NewRemoteClient(cfg.PolicyService.BaseURL, cfg.PolicyService.Timeout, logger)
	provider := policy.NewProvider(remote, policyCache, logger)

	calc := refund.NewCalculator(
		refund.WithFeeRate(cfg.Refund.FeeRate),
		refund.WithFeeFloor(cfg.Refund.FeeFloor),
		refund.WithProcessingEstimate(cfg.Refund.ProcessingEstimate),
	)

	svc := service.NewRefundService(provider, calc, publisher, cfg.Refund.RefreshInterval)

	return &App{
		config:        cfg,
		logger:        logger,
		redisClient:   redisClient,
		publisher:     publisher,
		httpServer:    server.New(fmt.Sprintf(":%d", cfg.Server.Port), svc, logger),
		metricsServer: metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), logger),
		stopTracing:   stopTracing,
	}, nil
}

// Run starts the application and blocks until the HTTP server stops
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting refund service")

	go func() {
		if err := a.metricsServer.Start(ctx); err != nil {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx := context.Background()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	if err := a.httpServer.Start(ctx); err != nil {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down refund service")

	if err := a.metricsServer.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to shut down metrics server", zap.Error(err))
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("Failed to close event publisher", zap.Error(err))
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	a.stopTracing()

	a.logger.Info("Shutdown complete")
	return nil
}
