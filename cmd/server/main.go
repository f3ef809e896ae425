// @title           KBR Silks Backend API
// @version         1.0.0
// @description     Storefront and admin backend for KBR Silks: saree catalog, order placement, customer records and the owner-only admin area.

// @contact.name   KBR Silks
// @contact.email  support@kbrsilks.in

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kbr-silks-backend/docs"
	"kbr-silks-backend/internal/admingate"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/database"
	"kbr-silks-backend/internal/events"
	"kbr-silks-backend/internal/handlers"
	"kbr-silks-backend/internal/imaging"
	"kbr-silks-backend/internal/middleware"
	"kbr-silks-backend/internal/retry"
	"kbr-silks-backend/internal/services"
	"kbr-silks-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.RequireIdentity {
		logger.Warn("REQUIRE_IDENTITY is off, admin routes are guarded by the local gate only")
	}

	// Update Swagger docs with dynamic base URL
	if baseURL, err := url.Parse(cfg.BaseURL); err == nil && baseURL.Host != "" {
		docs.SwaggerInfo.Host = baseURL.Host
		if baseURL.Scheme == "https" {
			docs.SwaggerInfo.Schemes = []string{"https", "http"}
		} else {
			docs.SwaggerInfo.Schemes = []string{"http", "https"}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	// Run migrations
	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	err = migrator.Run(ctx)
	migrator.Close()
	if err != nil {
		return err
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		return err
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithCache(services.NewQueryCache()),
		services.WithPublisher(publisher),
		services.WithRetry(
			retry.WithMaxAttempts(cfg.RetryMaxAttempts),
			retry.WithBaseDelay(cfg.RetryBaseDelay),
		),
		services.WithImaging(
			imaging.WithBudget(cfg.ImageBudgetBytes),
			imaging.WithMaxDimensions(cfg.ImageMaxDimension, cfg.ImageMaxDimension),
		),
	}

	storageService := services.NewStorageService(storageClient, opts...)
	roleService := services.NewRoleService(supabaseClient, opts...)

	policy, err := admingate.NewPolicy(cfg.OwnerPhones, cfg.AdminPassword)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:    cfg,
		Sessions:  middleware.NewSessionStore(cfg),
		Policy:    policy,
		Sarees:    services.NewSareeService(dbClient, storageService, opts...),
		Orders:    services.NewOrderService(dbClient, opts...),
		Customers: services.NewCustomerService(dbClient, opts...),
		Roles:     roleService,
		Admins:    roleService,
		Logger:    logger,
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newPublisher connects to Kafka when brokers are configured. Without brokers
// domain events are dropped.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, domain events disabled")
		return events.Nop{}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing domain events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return publisher, nil
}
