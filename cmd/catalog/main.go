package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/cache"
	"sonicpods/internal/catalog/fallback"
	cataloghttp "sonicpods/internal/catalog/http"
	catalogrepo "sonicpods/internal/catalog/repository"
	catalogservice "sonicpods/internal/catalog/service"
	"sonicpods/internal/catalog/seo"
	"sonicpods/internal/config"
	"sonicpods/internal/httpapi"
	"sonicpods/internal/messaging"
	"sonicpods/internal/orders"
	orderhttp "sonicpods/internal/orders/http"
	orderrepo "sonicpods/internal/orders/repository"
	orderservice "sonicpods/internal/orders/service"

	_ "sonicpods/docs"

	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	migrateSourcePrefix  = "file://"
	postgresDriverName   = "postgres"
	migrateRetryInterval = 15 * time.Second
)

// @title        SonicPods Catalog API
// @version      1.0
// @description  Product catalog with unique slugs, SEO generation, orders and a fallback store for database outages.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadCatalog()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The service keeps answering from the fallback store while the
	// database is unreachable, so neither migrations nor the ping are
	// fatal. Migrations keep retrying in the background until they apply.
	applyMigrations := func() error { return runMigrations(cfg.DatabaseURL, cfg.MigrationsPath) }
	if err := applyMigrations(); err != nil {
		logger.Warn("run migrations, retrying in background", "error", err, "retry_in", migrateRetryInterval)
		go migrateUntilApplied(ctx, applyMigrations, migrateRetryInterval, logger)
	}

	db, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		return 1
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.DBPingTimeout)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("database unreachable, serving from fallback until it recovers", "error", err)
	}

	productCache, closeCache := connectCache(cfg, logger)
	defer closeCache()

	productEvents, orderEvents, closeBroker := connectBroker(cfg, logger)
	defer closeBroker()

	catalogMetrics, orderMetrics := registerMetrics()

	fallbackStore, err := fallback.New()
	if err != nil {
		logger.Error("init fallback store", "error", err)
		return 1
	}

	productRepo := catalogrepo.NewPostgres(db)
	productSvc := catalogservice.New(catalogservice.Deps{
		Repo:     productRepo,
		Fallback: fallbackStore,
		Cache:    productCache,
		Synthesizer: seo.New(seo.Config{
			APIKey:  cfg.GroqAPIKey,
			APIURL:  cfg.GroqAPIURL,
			Model:   cfg.GroqModel,
			Timeout: cfg.AITimeout,
		}, logger),
		Publisher:   productEvents,
		Logger:      logger,
		Metrics:     catalogMetrics,
		SEOOnCreate: cfg.SEOOnCreate,
	})
	orderSvc := orderservice.New(orderrepo.NewPostgres(db), orders.NewStore(), orderEvents, logger, orderMetrics)

	router := httpapi.NewRouter(logger, productRepo,
		cataloghttp.NewHandler(productSvc),
		orderhttp.NewHandler(orderSvc),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("catalog service started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("catalog service stopped")
	return exitCode
}

func runMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// migrateUntilApplied calls apply every interval until it succeeds or ctx
// is done. It reports whether the migrations were applied.
func migrateUntilApplied(ctx context.Context, apply func() error, interval time.Duration, logger *slog.Logger) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
		if err := apply(); err != nil {
			logger.Warn("run migrations", "error", err, "retry_in", interval)
			continue
		}
		logger.Info("migrations applied")
		return true
	}
}

func connectCache(cfg config.Catalog, logger *slog.Logger) (catalogservice.Cache, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, product cache disabled")
		return cache.Nop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.DBPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, product cache disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return cache.Nop{}, func() {}
	}

	c := cache.NewRedis(client, cfg.RedisCacheTTL, logger)
	return c, func() { _ = c.Close() }
}

func connectBroker(cfg config.Catalog, logger *slog.Logger) (catalogservice.Publisher, orderservice.Publisher, func()) {
	noop := func() {}
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, domain events disabled")
		return messaging.Nop[catalog.ProductEvent]{}, messaging.Nop[orders.OrderEvent]{}, noop
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn("rabbitmq unreachable, domain events disabled", "error", err)
		return messaging.Nop[catalog.ProductEvent]{}, messaging.Nop[orders.OrderEvent]{}, noop
	}

	products, err := messaging.NewRabbitPublisher[catalog.ProductEvent](conn, catalog.EventsQueue)
	if err != nil {
		logger.Warn("init product publisher", "error", err)
		_ = conn.Close()
		return messaging.Nop[catalog.ProductEvent]{}, messaging.Nop[orders.OrderEvent]{}, noop
	}
	orderPub, err := messaging.NewRabbitPublisher[orders.OrderEvent](conn, orders.EventsQueue)
	if err != nil {
		logger.Warn("init order publisher", "error", err)
		_ = products.Close()
		_ = conn.Close()
		return messaging.Nop[catalog.ProductEvent]{}, messaging.Nop[orders.OrderEvent]{}, noop
	}

	return products, orderPub, func() {
		closeQuietly(products, orderPub, conn)
	}
}

func closeQuietly(closers ...io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func registerMetrics() (catalogservice.Metrics, orderservice.Metrics) {
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fallback_total",
		Help: "Operations served by the in-process fallback store, by operation",
	}, []string{"operation"})

	catalogMetrics := catalogservice.Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "products_created_total",
			Help: "Total number of products created",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "products_deleted_total",
			Help: "Total number of products deleted",
		}),
		Fallbacks: fallbacks,
		SEOTemplates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seo_template_fallback_total",
			Help: "SEO bundles produced by the template instead of the model",
		}),
	}
	orderMetrics := orderservice.Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders placed",
		}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_status_changes_total",
			Help: "Order status changes, by new status",
		}, []string{"status"}),
		Fallbacks: fallbacks,
	}

	prometheus.MustRegister(
		catalogMetrics.Created,
		catalogMetrics.Deleted,
		catalogMetrics.SEOTemplates,
		fallbacks,
		orderMetrics.Created,
		orderMetrics.StatusChanges,
	)
	return catalogMetrics, orderMetrics
}
