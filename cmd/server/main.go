package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"spsc-coopfund/internal/adapters/http/middleware"
	"spsc-coopfund/internal/adapters/http/routes"
	"spsc-coopfund/internal/adapters/messaging"
	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/config"
	"spsc-coopfund/internal/core/services"
	"spsc-coopfund/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// @title SPSC coopFund API
// @version 1.0
// @description Cooperative savings and loan settlement API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@spsc.or.th

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.coopfund.spsc.or.th
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.AppMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.EnvLoaded {
		zl.Info("no .env file found, using environment variables")
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		zl.Fatal("failed to auto migrate", zap.Error(err))
	}
	zl.Info("database migration completed")

	// Seed funds pool, loan types and demo members
	if err := config.NewSeeder(db, cfg, zl).Run(); err != nil {
		zl.Fatal("failed to seed master data", zap.Error(err))
	}

	// Settlement notifications
	var dispatchers []services.Dispatcher
	if cfg.Notify.WebhookURL != "" {
		dispatchers = append(dispatchers, services.NewWebhookDispatcher(cfg.Notify.WebhookURL, cfg.Notify.WebhookToken))
	}
	if cfg.Notify.LineChannelToken != "" {
		dispatchers = append(dispatchers, services.NewLINEDispatcher(repositories.NewMemberRepository(db), cfg.Notify.LineChannelToken))
	}
	var kafkaDispatcher *messaging.KafkaDispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaDispatcher = messaging.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zl)
		dispatchers = append(dispatchers, kafkaDispatcher)
	}
	if len(dispatchers) == 0 {
		dispatchers = append(dispatchers, services.NewLogDispatcher(zl))
	}
	notifier := services.NewNotificationService(zl, dispatchers...)

	// Interest accrual and due reminders
	var cronService *services.CronService
	if cfg.Cron.Enabled {
		cronService = services.NewCronService(services.CronConfig{
			AccrualSpec:  cfg.Cron.AccrualSpec,
			ReminderSpec: cfg.Cron.ReminderSpec,
			ReminderDays: cfg.Cron.ReminderDays,
		}, repositories.NewUnitOfWork(db), repositories.NewRepos(db), notifier, zl)
		if err := cronService.Start(); err != nil {
			zl.Fatal("failed to start cron jobs", zap.Error(err))
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SPSC coopFund API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg, notifier, zl)

	// Graceful shutdown
	go gracefulShutdown(app, zl)

	// Start server
	zl.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}

	// Listen has returned: drain background work before closing the database
	if cronService != nil {
		cronService.Stop()
	}
	notifier.Wait()
	if kafkaDispatcher != nil {
		if err := kafkaDispatcher.Close(); err != nil {
			zl.Warn("failed to close kafka writer", zap.Error(err))
		}
	}
	zl.Info("server stopped gracefully")
}

// gracefulShutdown stops accepting requests on SIGINT/SIGTERM
func gracefulShutdown(app *fiber.App, zl *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
