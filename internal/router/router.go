package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-lms-api/internal/config"
	"github.com/noah-isme/gema-lms-api/internal/handler"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentDashboardHandler *handler.StudentDashboardHandler
	CourseHandler           *handler.CourseHandler
	QuizHandler             *handler.QuizHandler
	AssignmentHandler       *handler.AssignmentHandler
	GamificationHandler     *handler.GamificationHandler
	AdminGradingHandler     *handler.AdminGradingHandler
	SeedHandler             *handler.SeedHandler
	JWTMiddleware           fiber.Handler
	// SubmissionLimiter throttles quiz and assignment submissions. Optional.
	SubmissionLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	student := app.Group("/api/v2/student", jwtMiddleware, middleware.RequireStudent())
	if deps.SubmissionLimiter != nil {
		// must precede the submit routes so the limiter runs first
		student.Use("/quizzes/submit", deps.SubmissionLimiter)
		student.Use("/assignments/submit", deps.SubmissionLimiter)
	}

	if deps.StudentDashboardHandler != nil {
		deps.StudentDashboardHandler.Register(student)
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(student)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(student)
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(student)
	}
	if deps.GamificationHandler != nil {
		deps.GamificationHandler.Register(student)
	}

	if deps.AdminGradingHandler != nil {
		admin := app.Group("/api/v2/admin", jwtMiddleware, middleware.RequireStaff())
		deps.AdminGradingHandler.Register(admin)
	}

	// Seeding is guarded by its own token header rather than JWT.
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(app.Group("/api/v2/seed"))
	}
}
