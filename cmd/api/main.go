package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/database"
	"github.com/noah-isme/campus-go-api/internal/handler"
	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/repository"
	"github.com/noah-isme/campus-go-api/internal/router"
	"github.com/noah-isme/campus-go-api/internal/scheduler"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/pkg/ml"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	location, err := cfg.Location()
	if err != nil {
		log.Fatalf("failed to resolve analytics timezone: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, dashboard caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, batch events disabled")
	}

	mlClient, err := ml.New(ml.Config{BaseURL: cfg.MLServiceURL, Timeout: cfg.MLTimeout}, logger)
	if err != nil {
		log.Fatalf("failed to create prediction client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	buildingRepo := repository.NewBuildingRepository(db)
	eventRepo := repository.NewEventRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	buildingAnalyticsRepo := repository.NewBuildingAnalyticsRepository(db)
	eventAnalyticsRepo := repository.NewEventAnalyticsRepository(db)
	metricRepo := repository.NewSystemMetricRepository(db)

	recorderService := service.NewRecorderService(activityRepo, buildingAnalyticsRepo, eventAnalyticsRepo, metricRepo, location, logger)
	batchService := service.NewBatchService(buildingAnalyticsRepo, eventAnalyticsRepo, activityRepo, metricRepo, natsConn, location, cfg.RetentionDays, logger)
	statsService := service.NewStatsService(buildingAnalyticsRepo, eventAnalyticsRepo, activityRepo, redisClient, cfg.DashboardCacheTTL, location, logger)
	predictionService := service.NewPredictionService(eventRepo, buildingRepo, eventAnalyticsRepo, buildingAnalyticsRepo, mlClient, location, logger)
	buildingService := service.NewBuildingService(buildingRepo, validate, logger)
	eventService := service.NewEventService(eventRepo, recorderService, validate, logger)
	categoryService := service.NewCategoryService(categoryRepo, validate, logger)

	adminGuards := []fiber.Handler{middleware.JWTProtected(cfg.JWTSecret), middleware.AdminOnly()}

	bigDataHandler := handler.NewBigDataHandler(statsService, batchService, adminGuards, logger)
	predictionHandler := handler.NewPredictionHandler(predictionService, logger)
	buildingHandler := handler.NewBuildingHandler(buildingService, recorderService, adminGuards, logger)
	eventHandler := handler.NewEventHandler(eventService, recorderService, adminGuards, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, adminGuards, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, Recorder: recorderService})
	router.Register(app, cfg, router.Dependencies{
		BigDataHandler:    bigDataHandler,
		PredictionHandler: predictionHandler,
		BuildingHandler:   buildingHandler,
		EventHandler:      eventHandler,
		CategoryHandler:   categoryHandler,
	})

	sched := scheduler.New(location, logger)
	sched.AddDaily("daily_batch", cfg.BatchDailyAt, func(ctx context.Context) error {
		_, err := batchService.RunBatchProcessing(ctx)
		return err
	})
	sched.AddWeekly("weekly_cleanup", time.Sunday, cfg.BatchWeeklyAt, func(ctx context.Context) error {
		_, err := batchService.CleanOldData(ctx, cfg.RetentionDays)
		return err
	})
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
