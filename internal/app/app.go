package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/utafrali/shopfront/internal/auth"
	"github.com/utafrali/shopfront/internal/config"
	"github.com/utafrali/shopfront/internal/event"
	handler "github.com/utafrali/shopfront/internal/handler/http"
	"github.com/utafrali/shopfront/internal/imagestore"
	"github.com/utafrali/shopfront/internal/imagestore/cloudinary"
	"github.com/utafrali/shopfront/internal/payment/mock"
	"github.com/utafrali/shopfront/internal/repository"
	"github.com/utafrali/shopfront/internal/repository/memory"
	mongorepo "github.com/utafrali/shopfront/internal/repository/mongo"
	"github.com/utafrali/shopfront/internal/repository/postgres"
	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/migrations"
	"github.com/utafrali/shopfront/pkg/database"
	"github.com/utafrali/shopfront/pkg/health"
	"github.com/utafrali/shopfront/pkg/httpclient"
	pkgkafka "github.com/utafrali/shopfront/pkg/kafka"
	"github.com/utafrali/shopfront/pkg/middleware"
	"github.com/utafrali/shopfront/pkg/tracing"
)

const (
	serviceName    = "shopfront"
	serviceVersion = "0.1.0"
)

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	mongo          *mongo.Database
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.abort()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	reg := prometheus.DefaultRegisterer
	healthHandler := health.NewHandler()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(reg, pool, serviceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)
	}

	// Catalog store.
	products, err := a.newProductRepository(ctx, pool, healthHandler)
	if err != nil {
		return nil, err
	}

	// Session revocation store.
	revocations, err := a.newRevocationStore(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	// Initialize Kafka producer.
	if cfg.KafkaEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		producer := a.producer
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, domain events are disabled")
	}

	// Image store.
	images := a.newImageStore(healthHandler)

	// Build the dependency graph.
	metrics := service.NewMetrics(reg)
	eventProducer := event.NewProducer(a.producer, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry())
	sessions := auth.NewSessionManager(jwtManager, revocations, cfg.CookieDays(), cfg.IsProduction())

	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	router := handler.NewRouter(handler.RouterDeps{
		Products:   service.NewProductService(products, images, eventProducer, metrics, logger, cfg.ProductsPerPage),
		Reviews:    service.NewReviewService(products, eventProducer, metrics, logger),
		Users:      service.NewUserService(userRepo, images, metrics, logger),
		Orders:     service.NewOrderService(orderRepo, products, eventProducer, metrics, logger),
		Payments:   service.NewPaymentService(mock.NewProvider(), cfg.PaymentCurrency, cfg.StripeAPIKey, logger),
		Sessions:   sessions,
		Health:     healthHandler,
		Registerer: reg,
		Gatherer:   prometheus.DefaultGatherer,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: true,
		},
		AuthRateLimit: middleware.RateLimitConfig{
			RPS:               cfg.AuthRateLimitRPS,
			Burst:             cfg.AuthRateLimitBurst,
			TrustForwardedFor: cfg.TrustForwardedFor,
		},
		Logger: logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ok = true
	return a, nil
}

func (a *App) newProductRepository(ctx context.Context, pool *pgxpool.Pool, h *health.Handler) (repository.ProductRepository, error) {
	switch a.cfg.CatalogBackend {
	case config.CatalogMongo:
		db, err := database.NewMongoDatabase(ctx, database.MongoConfig{URI: a.cfg.MongoURI, Database: a.cfg.MongoDB})
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		a.mongo = db
		repo := mongorepo.NewProductRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		h.RegisterCritical("mongo", func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		})
		a.logger.Info("catalog stored in MongoDB", slog.String("database", a.cfg.MongoDB))
		return repo, nil

	case config.CatalogMemory:
		a.logger.Warn("catalog stored in process memory, data is lost on restart")
		return memory.NewProductRepository(), nil

	default:
		return postgres.NewProductRepository(pool), nil
	}
}

func (a *App) newRevocationStore(ctx context.Context, h *health.Handler) (auth.RevocationStore, error) {
	if a.cfg.RedisHost == "" {
		a.logger.Warn("REDIS_HOST not set, session revocations are kept in process memory")
		return auth.NewMemoryRevocationStore(), nil
	}

	client, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     a.cfg.RedisHost,
		Port:     a.cfg.RedisPort,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = client
	h.RegisterCritical("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	a.logger.Info("connected to Redis", slog.String("host", a.cfg.RedisHost), slog.Int("port", a.cfg.RedisPort))
	return auth.NewRedisRevocationStore(client), nil
}

func (a *App) newImageStore(h *health.Handler) imagestore.Store {
	if a.cfg.ImageStore != config.ImageStoreCloudinary {
		a.logger.Warn("images stored in process memory")
		return imagestore.NewMemoryStore(fmt.Sprintf("http://localhost:%d/images", a.cfg.HTTPPort))
	}

	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("cloudinary"),
		a.logger,
	)
	store := cloudinary.New(cloudinary.Config{
		CloudName: a.cfg.CloudinaryName,
		APIKey:    a.cfg.CloudinaryAPIKey,
		APISecret: a.cfg.CloudinaryAPISecret,
	}, client)
	h.RegisterNonCritical("cloudinary", store.Ping)
	return store
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer and stores
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (10s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if err := a.shutdownTracer(); err != nil {
		errs = append(errs, err)
	}

	// 3. Close the producer and stores.
	storeCtx, storeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer storeCancel()
	errs = append(errs, a.closeStores(storeCtx)...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// abort releases whatever NewApp had set up before it failed.
func (a *App) abort() {
	_ = a.shutdownTracer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.closeStores(ctx)
}

func (a *App) shutdownTracer() error {
	if a.tracerShutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := a.tracerShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (a *App) closeStores(ctx context.Context) []error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Client().Disconnect(ctx); err != nil {
			a.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errs
}
