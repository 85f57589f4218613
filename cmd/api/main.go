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

	"github.com/credentia/credentia-api/internal/config"
	"github.com/credentia/credentia-api/internal/database"
	"github.com/credentia/credentia-api/internal/handler"
	"github.com/credentia/credentia-api/internal/middleware"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
	"github.com/credentia/credentia-api/internal/router"
	"github.com/credentia/credentia-api/internal/service"
	cloud "github.com/credentia/credentia-api/pkg/cloudinary"
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
		&models.Learner{},
		&models.Course{},
		&models.CourseModule{},
		&models.Enrollment{},
		&models.ModuleProgress{},
		&models.GradeRecord{},
		&models.AttendanceRecord{},
		&models.Certificate{},
		&models.Notification{},
		&models.UploadRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional: without them caching and cross-node fanout
	// degrade gracefully to single-node behavior.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	var storage service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	learnerRepo := repository.NewLearnerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewModuleProgressRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	learnerService := service.NewLearnerService(learnerRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	progressService := service.NewProgressService(enrollmentRepo, courseRepo, progressRepo, logger)
	gradebookService := service.NewGradebookService(enrollmentRepo, gradeRepo, attendanceRepo, validate, logger)
	eligibilityService := service.NewEligibilityService(enrollmentRepo, progressService, gradebookService, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannel, natsConn, validate, logger)
	certificateService := service.NewCertificateService(certificateRepo, enrollmentRepo, eligibilityService, progressService, gradebookService, notificationService, redisClient, cfg.VerifyCacheTTL, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, learnerRepo, courseRepo, certificateRepo, progressRepo, gradeRepo, attendanceRepo, eligibilityService, validate, logger)
	dashboardService := service.NewDashboardService(learnerRepo, enrollmentRepo, certificateRepo, progressService, gradebookService, eligibilityService, redisClient, cfg.DashboardCacheTTL, logger)
	uploadService := service.NewUploadService(storage, uploadRepo, courseService, cfg.UploadMaxSizeMB, logger)
	seedService := service.NewSeedService(learnerRepo, courseRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	// The watcher closes the progress -> eligibility -> progress cycle, so it
	// is attached after construction.
	watcher := service.NewEligibilityWatcher(eligibilityService, certificateRepo, notificationService, logger)
	progressService.SetEvaluationTrigger(watcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notificationService.Start(ctx)

	learnerHandler := handler.NewLearnerHandler(learnerService, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, eligibilityService, logger)
	progressHandler := handler.NewProgressHandler(progressService, logger)
	gradebookHandler := handler.NewGradebookHandler(gradebookService, logger)
	certificateHandler := handler.NewCertificateHandler(certificateService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, 30*time.Second)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)

	var seedHandler *handler.SeedHandler
	if cfg.SeedEnabled {
		seedHandler = handler.NewSeedHandler(seedService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		LearnerHandler:      learnerHandler,
		CourseHandler:       courseHandler,
		EnrollmentHandler:   enrollmentHandler,
		ProgressHandler:     progressHandler,
		GradebookHandler:    gradebookHandler,
		CertificateHandler:  certificateHandler,
		DashboardHandler:    dashboardHandler,
		NotificationHandler: notificationHandler,
		UploadHandler:       uploadHandler,
		SeedHandler:         seedHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app)
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
