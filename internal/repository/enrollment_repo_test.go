package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

func TestEnrollmentRepositoryAddCompletionIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)
	student := seedStudent(t, db, "Ada")
	course := seedCourse(t, db)

	enrollment := models.Enrollment{StudentID: student.ID, CourseID: course.ID, PaymentStatus: models.PaymentStatusPaid}
	require.NoError(t, repo.Create(context.Background(), &enrollment))

	taskID := course.Modules[0].Tasks[0].ID
	inserted, err := repo.AddCompletion(context.Background(), enrollment.ID, models.CompletionItemTask, taskID)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.AddCompletion(context.Background(), enrollment.ID, models.CompletionItemTask, taskID)
	require.NoError(t, err)
	require.False(t, inserted, "second insert must be a no-op")

	inserted, err = repo.AddCompletion(context.Background(), enrollment.ID, models.CompletionItemQuiz, taskID)
	require.NoError(t, err)
	require.True(t, inserted, "quiz and task ids live in separate sets")

	loaded, err := repo.Get(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, loaded.CompletedTaskIDs(), 1)
	require.Len(t, loaded.CompletedQuizIDs(), 1)
}

func TestEnrollmentRepositoryUpdateProgressSetsCompletionOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)
	student := seedStudent(t, db, "Grace")
	course := seedCourse(t, db)

	enrollment := models.Enrollment{StudentID: student.ID, CourseID: course.ID, PaymentStatus: models.PaymentStatusPaid}
	require.NoError(t, repo.Create(context.Background(), &enrollment))

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	completed, err := repo.UpdateProgress(context.Background(), enrollment.ID, 67, first)
	require.NoError(t, err)
	require.False(t, completed)

	completed, err = repo.UpdateProgress(context.Background(), enrollment.ID, 100, first)
	require.NoError(t, err)
	require.True(t, completed)

	completed, err = repo.UpdateProgress(context.Background(), enrollment.ID, 100, first.Add(48*time.Hour))
	require.NoError(t, err)
	require.False(t, completed)

	loaded, err := repo.Get(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	require.True(t, loaded.IsCompleted)
	require.Equal(t, 100, loaded.ProgressPercentage)
	require.NotNil(t, loaded.CompletionDate)
	require.True(t, loaded.CompletionDate.Equal(first), "completion date must never be overwritten")
}

func TestEnrollmentRepositoryListPaidByStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEnrollmentRepository(db)
	student := seedStudent(t, db, "Linus")
	course := seedCourse(t, db)
	other := models.Course{Title: "Unpaid Course"}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, repo.Create(context.Background(), &models.Enrollment{StudentID: student.ID, CourseID: course.ID, PaymentStatus: models.PaymentStatusPaid}))
	require.NoError(t, repo.Create(context.Background(), &models.Enrollment{StudentID: student.ID, CourseID: other.ID, PaymentStatus: models.PaymentStatusPending}))

	enrollments, err := repo.ListPaidByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.Equal(t, "Go Fundamentals", enrollments[0].Course.Title)
	require.Len(t, enrollments[0].Course.Modules, 2)
}
