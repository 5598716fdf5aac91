package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

const (
	dashboardRecentActivity = 5
	dashboardXPWindow       = 7 * 24 * time.Hour
)

// DashboardInvalidator drops cached dashboards after a student's stats change.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentID uint)
}

// StudentDashboardService produces aggregated dashboard metrics.
type StudentDashboardService interface {
	DashboardInvalidator
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	students    repository.StudentRepository
	enrollments repository.EnrollmentRepository
	leaderboard repository.LeaderboardRepository
	activity    repository.ActivityLogRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator.
func NewStudentDashboardService(students repository.StudentRepository, enrollments repository.EnrollmentRepository, leaderboard repository.LeaderboardRepository, activity repository.ActivityLogRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentDashboardService {
	return &studentDashboardService{
		students:    students,
		enrollments: enrollments,
		leaderboard: leaderboard,
		activity:    activity,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "student_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

// GetDashboard serves the cached aggregate when present. The global rank moves
// whenever any other student earns XP, so it is never cached and is read fresh
// on every call.
func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	response, err := s.aggregate(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	entry, err := s.leaderboard.GetEntry(ctx, studentID, models.GlobalLeaderboardScope)
	switch {
	case err == nil:
		rank := entry.Rank
		response.Student.GlobalRank = &rank
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.StudentDashboardResponse{}, wrapInternal("load leaderboard entry", err)
	}

	return response, nil
}

func (s *studentDashboardService) aggregate(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := dashboardCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				observability.CacheLookups().WithLabelValues("dashboard", "hit").Inc()
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.CacheLookups().WithLabelValues("dashboard", "miss").Inc()
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDashboardResponse{}, ErrStudentNotFound
		}
		return dto.StudentDashboardResponse{}, wrapInternal("load student", err)
	}

	enrollments, err := s.enrollments.ListPaidByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, wrapInternal("list enrollments", err)
	}

	recent, _, err := s.activity.List(ctx, repository.ActivityLogFilter{
		Page:      1,
		PageSize:  dashboardRecentActivity,
		StudentID: &studentID,
	})
	if err != nil {
		return dto.StudentDashboardResponse{}, wrapInternal("list activity", err)
	}

	weeklyXP, err := s.activity.SumXP(ctx, studentID, s.now().UTC().Add(-dashboardXPWindow))
	if err != nil {
		return dto.StudentDashboardResponse{}, wrapInternal("sum weekly xp", err)
	}

	response := s.buildResponse(student, weeklyXP, enrollments, recent)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *studentDashboardService) Invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *studentDashboardService) buildResponse(student models.Student, weeklyXP int, enrollments []models.Enrollment, recent []models.ActivityLog) dto.StudentDashboardResponse {
	summary := dto.CourseSummary{EnrolledCourses: len(enrollments)}
	courses := make([]dto.CourseProgress, 0, len(enrollments))
	progressTotal := 0

	for _, enrollment := range enrollments {
		if enrollment.IsCompleted {
			summary.CompletedCourses++
		}
		progressTotal += enrollment.ProgressPercentage
		courses = append(courses, dto.NewCourseProgress(enrollment))
	}

	if len(enrollments) > 0 {
		summary.AverageProgress = percentage(progressTotal, 100*len(enrollments))
	}

	return dto.StudentDashboardResponse{
		Student: dto.StudentStats{
			ID:                   student.ID,
			Name:                 student.Name,
			XP:                   student.XP,
			Streak:               student.Streak,
			LastStreakDate:       student.LastStreakDate,
			QuizzesCompleted:     student.QuizzesCompleted,
			AssignmentsCompleted: student.AssignmentsCompleted,
			XPLast7Days:          weeklyXP,
			IsPremiumUnlocked:    student.IsPremiumUnlocked,
		},
		Summary:        summary,
		Courses:        courses,
		RecentActivity: dto.NewActivityResponseSlice(recent),
		GeneratedAt:    s.now().UTC(),
	}
}
