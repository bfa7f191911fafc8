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
	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/config"
	"github.com/stackit-forum/stackit-api/internal/database"
	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/handler"
	"github.com/stackit-forum/stackit-api/internal/middleware"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/repository"
	"github.com/stackit-forum/stackit-api/internal/router"
	"github.com/stackit-forum/stackit-api/internal/service"
	"github.com/stackit-forum/stackit-api/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	codec, err := session.NewCodec(cfg.SessionSecret, cfg.SessionSalt)
	if err != nil {
		log.Fatalf("failed to initialise session codec: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := dto.RegisterValidators(validate); err != nil {
		log.Fatalf("failed to register validators: %v", err)
	}

	observability.RegisterMetrics()

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	securityLogRepo := repository.NewSecurityLogRepository(db)

	engine := service.NewNotificationEngine(postRepo, commentRepo, notificationRepo, logger)

	commentService := service.NewCommentService(commentRepo, postRepo, tokenRepo, engine, validate, logger)
	postService := service.NewPostService(postRepo, commentService, tokenRepo, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, tokenRepo, validate, logger)
	moderationService := service.NewModerationService(reportRepo, postRepo, commentRepo, securityLogRepo, validate, logger)
	authService := service.NewAuthService(
		cfg,
		otpRepo,
		tokenRepo,
		securityLogRepo,
		codec,
		service.NewHTTPCaptchaVerifier(cfg, logger),
		service.NewSMTPMailer(cfg, logger),
		service.NewRedisRateLimiter(redisClient),
		validate,
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthService:         authService,
		AuthHandler:         handler.NewAuthHandler(authService, cfg, logger),
		PostHandler:         handler.NewPostHandler(postService, authService, cfg, logger),
		CommentHandler:      handler.NewCommentHandler(commentService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		ReportHandler:       handler.NewReportHandler(moderationService, logger),
		AdminHandler:        handler.NewAdminHandler(moderationService, notificationService, logger),
	})

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
