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

	"github.com/acadex/acadex-api/internal/config"
	"github.com/acadex/acadex-api/internal/database"
	"github.com/acadex/acadex-api/internal/handler"
	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/internal/router"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/pkg/ai"
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

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CLO{},
		&models.FacultyCourseAssignment{},
		&models.Content{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	generator := buildGenerator(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	cloRepo := repository.NewCLORepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	contentRepo := repository.NewContentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, activityService, validate, cfg.JWTSecret, cfg.JWTExpiry, logger)
	userService := service.NewUserService(userRepo, contentRepo, activityService, validate, logger)
	courseService := service.NewCourseService(courseRepo, userRepo, assignmentRepo, contentRepo, activityService, validate, redisClient, cfg.CourseCacheTTL, logger)
	cloService := service.NewCLOService(cloRepo, courseRepo, activityService, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, userRepo, courseRepo, activityService, validate, logger)
	contentService := service.NewContentService(contentRepo, courseRepo, assignmentRepo, generator, cfg.GenerationTimeout, activityService, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, activityService, courseService, logger)
	courseHandler := handler.NewCourseHandler(courseService, cloService, contentService, logger)
	cloHandler := handler.NewCLOHandler(cloService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	contentHandler := handler.NewContentHandler(contentService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		CourseHandler:     courseHandler,
		CLOHandler:        cloHandler,
		AssignmentHandler: assignmentHandler,
		ContentHandler:    contentHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret, userRepo),
		OptionalJWT:       middleware.JWTOptional(cfg.JWTSecret, userRepo),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildGenerator(cfg config.Config, logger zerolog.Logger) ai.Generator {
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err == nil {
			return generator
		}
		logger.Warn().Err(err).Msg("falling back to template question generator")
	}

	return ai.NewTemplateGenerator()
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
