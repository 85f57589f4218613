package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/credentia/credentia-api/internal/config"
	"github.com/credentia/credentia-api/internal/handler"
	"github.com/credentia/credentia-api/internal/middleware"
	"github.com/credentia/credentia-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	LearnerHandler      *handler.LearnerHandler
	CourseHandler       *handler.CourseHandler
	EnrollmentHandler   *handler.EnrollmentHandler
	ProgressHandler     *handler.ProgressHandler
	GradebookHandler    *handler.GradebookHandler
	CertificateHandler  *handler.CertificateHandler
	DashboardHandler    *handler.DashboardHandler
	NotificationHandler *handler.NotificationHandler
	UploadHandler       *handler.UploadHandler
	SeedHandler         *handler.SeedHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public verification: no auth, rate limited by client IP. Everything a
	// third-party verifier needs lives behind this one route.
	if deps.CertificateHandler != nil {
		deps.CertificateHandler.RegisterVerify(api, middleware.RateLimit("verify", 30, time.Minute))
	}

	var learners, courses fiber.Router

	if deps.LearnerHandler != nil {
		learners = api.Group("/learners", jwtMiddleware)
		deps.LearnerHandler.Register(learners)
	}

	if deps.CourseHandler != nil {
		courses = api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	if deps.EnrollmentHandler != nil {
		enrollments := api.Group("/enrollments", jwtMiddleware)
		deps.EnrollmentHandler.Register(enrollments)
		if learners != nil && courses != nil {
			deps.EnrollmentHandler.RegisterListing(learners, courses)
		}

		if deps.ProgressHandler != nil {
			deps.ProgressHandler.Register(enrollments)
		}
		if deps.GradebookHandler != nil {
			deps.GradebookHandler.Register(enrollments)
		}
		if deps.CertificateHandler != nil {
			deps.CertificateHandler.Register(enrollments)
		}
	}

	if deps.DashboardHandler != nil && learners != nil {
		deps.DashboardHandler.Register(learners)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleInstructor))
		deps.UploadHandler.Register(uploads)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
