package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

type testFixture struct {
	db          *gorm.DB
	redis       *redis.Client
	mini        *miniredis.Miniredis
	courses     repository.CourseRepository
	students    repository.StudentRepository
	enrollments repository.EnrollmentRepository
	submissions repository.SubmissionRepository
	boards      repository.LeaderboardRepository
	activityLog repository.ActivityLogRepository
	leaderboard LeaderboardService
	activity    ActivityService
	dashboard   StudentDashboardService
	deps        GamificationDeps
	now         time.Time
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:svc_"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Module{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.Task{},
		&models.Enrollment{},
		&models.EnrollmentCompletion{},
		&models.Submission{},
		&models.LeaderboardEntry{},
		&models.ActivityLog{},
	))
	return db
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	db := setupServiceDB(t)
	validate := validator.New()
	logger := testLogger()

	f := &testFixture{
		db:          db,
		redis:       redisClient,
		mini:        mini,
		courses:     repository.NewCourseRepository(db),
		students:    repository.NewStudentRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		boards:      repository.NewLeaderboardRepository(db),
		activityLog: repository.NewActivityLogRepository(db),
		now:         time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC),
	}

	f.leaderboard = NewLeaderboardService(f.boards, f.courses, redisClient, time.Minute, 20, validate, logger)
	f.activity = NewActivityService(f.activityLog, validate, logger)
	f.dashboard = NewStudentDashboardService(f.students, f.enrollments, f.boards, f.activityLog, redisClient, time.Minute, logger)
	f.deps = GamificationDeps{
		Transactor:  repository.NewTransactor(db),
		Courses:     f.courses,
		Students:    f.students,
		Enrollments: f.enrollments,
		Submissions: f.submissions,
		Leaderboard: f.leaderboard,
		Activity:    f.activity,
		Events:      NewEventPublisher(redisClient, nil, "lms", logger),
		Dashboards:  f.dashboard,
		Policy:      DefaultGamificationPolicy(),
		Validator:   validate,
		Logger:      logger,
		Now:         func() time.Time { return f.now },
	}
	return f
}

func (f *testFixture) student(t *testing.T, name string) models.Student {
	t.Helper()
	student := models.Student{Name: name, Email: strings.ToLower(name) + "@example.com"}
	require.NoError(t, f.students.Create(context.Background(), &student))
	return student
}

// course creates a course with one quiz of three questions and two tasks across
// two modules. Every question's correct option is index 1.
func (f *testFixture) course(t *testing.T, title string) models.Course {
	t.Helper()
	questions := make([]models.QuizQuestion, 0, 3)
	for i, prompt := range []string{"Zero value of int?", "Keyword for goroutines?", "Map lookup form?"} {
		question := models.QuizQuestion{Prompt: prompt, CorrectOption: 1, Explanation: "see the tour", Position: i + 1}
		question.SetOptions([]string{"a", "b", "c"})
		questions = append(questions, question)
	}

	course := models.Course{
		Title: title,
		Modules: []models.Module{
			{
				Title:    "Basics",
				Position: 1,
				Quizzes:  []models.Quiz{{Title: "Syntax", Position: 1, Questions: questions}},
				Tasks:    []models.Task{{Title: "Hello world", Position: 2}},
			},
			{
				Title:    "Concurrency",
				Position: 2,
				Tasks:    []models.Task{{Title: "Worker pool", Position: 1}},
			},
		},
	}
	require.NoError(t, f.db.Create(&course).Error)

	loaded, err := f.courses.GetByID(context.Background(), course.ID)
	require.NoError(t, err)
	return loaded
}

func (f *testFixture) enroll(t *testing.T, student models.Student, course models.Course, status string) models.Enrollment {
	t.Helper()
	enrollment := models.Enrollment{StudentID: student.ID, CourseID: course.ID, PaymentStatus: status}
	require.NoError(t, f.enrollments.Create(context.Background(), &enrollment))
	return enrollment
}

func (f *testFixture) reloadStudent(t *testing.T, id uint) models.Student {
	t.Helper()
	student, err := f.students.GetByID(context.Background(), id)
	require.NoError(t, err)
	return student
}

func questionKey(question models.QuizQuestion) string {
	return strconv.FormatUint(uint64(question.ID), 10)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrUint(v uint) *uint {
	return &v
}
