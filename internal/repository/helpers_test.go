package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
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

func seedStudent(t *testing.T, db *gorm.DB, name string) models.Student {
	t.Helper()
	student := models.Student{Name: name, Email: strings.ToLower(name) + "@example.com"}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func seedCourse(t *testing.T, db *gorm.DB) models.Course {
	t.Helper()
	question := models.QuizQuestion{Prompt: "Which keyword starts a goroutine?", CorrectOption: 1}
	question.SetOptions([]string{"defer", "go", "chan"})

	course := models.Course{
		Title: "Go Fundamentals",
		Modules: []models.Module{
			{
				Title:    "Basics",
				Position: 1,
				Quizzes:  []models.Quiz{{Title: "Syntax", Position: 1, Questions: []models.QuizQuestion{question}}},
				Tasks:    []models.Task{{Title: "Hello world", Position: 2}},
			},
			{
				Title:    "Concurrency",
				Position: 2,
				Tasks:    []models.Task{{Title: "Worker pool", Position: 1}},
			},
		},
	}
	require.NoError(t, db.WithContext(context.Background()).Create(&course).Error)
	return course
}
