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

	"github.com/noah-isme/gema-lms-api/internal/config"
	"github.com/noah-isme/gema-lms-api/internal/database"
	"github.com/noah-isme/gema-lms-api/internal/handler"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
	"github.com/noah-isme/gema-lms-api/internal/router"
	"github.com/noah-isme/gema-lms-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, validate, logger)
	dashboardService := service.NewStudentDashboardService(studentRepo, enrollmentRepo, leaderboardRepo, activityRepo, redisClient, cfg.DashboardCacheTTL, logger)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, courseRepo, redisClient, cfg.LeaderboardCacheTTL, cfg.LeaderboardPageSize, validate, logger)

	deps := service.GamificationDeps{
		Transactor:  repository.NewTransactor(db),
		Courses:     courseRepo,
		Students:    studentRepo,
		Enrollments: enrollmentRepo,
		Submissions: submissionRepo,
		Leaderboard: leaderboardService,
		Activity:    activityService,
		Events:      service.NewEventPublisher(redisClient, natsConn, cfg.EventChannel, logger),
		Dashboards:  dashboardService,
		Policy:      policyFromConfig(cfg),
		Validator:   validate,
		Logger:      logger,
	}

	quizService := service.NewQuizService(deps)
	assignmentService := service.NewAssignmentService(deps)
	streakService := service.NewStreakService(deps)
	courseService := service.NewCourseService(deps)
	referralService := service.NewReferralService(deps)
	gradingService := service.NewGradingService(submissionRepo, activityService, dashboardService, validate, logger)
	seedService := service.NewSeedService(courseRepo, cfg.SeedEnabled, cfg.SeedToken, validate, logger)

	reconciler, err := service.NewLeaderboardReconciler(leaderboardService, cfg.LeaderboardReconcileEvery, logger)
	if err != nil {
		log.Fatalf("failed to create leaderboard reconciler: %v", err)
	}
	if err := reconciler.Start(); err != nil {
		log.Fatalf("failed to start leaderboard reconciler: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, activityService, logger),
		CourseHandler:           handler.NewCourseHandler(courseService, logger),
		QuizHandler:             handler.NewQuizHandler(quizService, logger),
		AssignmentHandler:       handler.NewAssignmentHandler(assignmentService, logger),
		GamificationHandler:     handler.NewGamificationHandler(streakService, leaderboardService, referralService, logger),
		AdminGradingHandler:     handler.NewAdminGradingHandler(gradingService, logger),
		SeedHandler:             handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
		SubmissionLimiter:       middleware.RateLimit("submissions", cfg.SubmissionRateLimit, cfg.SubmissionRateLimitWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, reconciler, redisClient, natsConn)
}

func policyFromConfig(cfg config.Config) service.GamificationPolicy {
	return service.GamificationPolicy{
		QuizXP:                  cfg.QuizXP,
		AssignmentXP:            cfg.AssignmentXP,
		StreakBonusXP:           cfg.StreakBonusXP,
		StreakMilestone:         cfg.StreakMilestone,
		ReferralUnlockThreshold: cfg.ReferralUnlockThreshold,
		Timezone:                cfg.Timezone,
	}
}

func waitForShutdown(app *fiber.App, reconciler *service.LeaderboardReconciler, redisClient *redis.Client, natsConn *nats.Conn) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	if err := reconciler.Shutdown(); err != nil {
		log.Printf("leaderboard reconciler shutdown failed: %v", err)
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Printf("nats drain failed: %v", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("redis close failed: %v", err)
		}
	}

	log.Println("server stopped")
}
