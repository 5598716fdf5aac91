package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

func TestSubmissionRepositoryUpsertKeepsSingleRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	student := seedStudent(t, db, "Ada")
	course := seedCourse(t, db)
	task := course.Modules[0].Tasks[0]

	first := models.Submission{
		StudentID:      student.ID,
		CourseID:       course.ID,
		ModuleID:       task.ModuleID,
		LessonID:       task.ID,
		Type:           models.SubmissionTypeAssignment,
		Status:         models.SubmissionStatusSubmitted,
		SubmissionLink: "https://github.com/ada/hello",
	}
	require.NoError(t, repo.Upsert(context.Background(), &first))
	require.NotZero(t, first.ID)

	second := models.Submission{
		StudentID:      student.ID,
		CourseID:       course.ID,
		ModuleID:       task.ModuleID,
		LessonID:       task.ID,
		Type:           models.SubmissionTypeAssignment,
		Status:         models.SubmissionStatusSubmitted,
		SubmissionLink: "https://github.com/ada/hello-v2",
		Notes:          "second try",
	}
	require.NoError(t, repo.Upsert(context.Background(), &second))
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "https://github.com/ada/hello-v2", second.SubmissionLink)

	items, total, err := repo.List(context.Background(), SubmissionFilter{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	require.Equal(t, "Ada", items[0].Student.Name)
}

func TestSubmissionRepositoryQuizUpsertOverwritesScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	student := seedStudent(t, db, "Grace")
	course := seedCourse(t, db)
	quiz := course.Modules[0].Quizzes[0]

	score := 1
	attempt := models.Submission{
		StudentID:      student.ID,
		CourseID:       course.ID,
		ModuleID:       quiz.ModuleID,
		LessonID:       quiz.ID,
		Type:           models.SubmissionTypeQuiz,
		Status:         models.SubmissionStatusGraded,
		Score:          &score,
		TotalQuestions: 1,
		Answers:        []byte(`{"1":1}`),
	}
	require.NoError(t, repo.Upsert(context.Background(), &attempt))

	zero := 0
	retry := attempt
	retry.ID = 0
	retry.Score = &zero
	retry.Answers = []byte(`{"1":0}`)
	require.NoError(t, repo.Upsert(context.Background(), &retry))
	require.Equal(t, attempt.ID, retry.ID)
	require.NotNil(t, retry.Score)
	require.Equal(t, 0, *retry.Score)

	quizzes, err := repo.ListByStudentCourse(context.Background(), student.ID, course.ID, models.SubmissionTypeQuiz)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)

	assignments, err := repo.ListByStudentCourse(context.Background(), student.ID, course.ID, models.SubmissionTypeAssignment)
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestSubmissionRepositoryAssignmentResubmitClearsReview(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	student := seedStudent(t, db, "Linus")
	reviewer := seedStudent(t, db, "Reviewer")
	course := seedCourse(t, db)
	task := course.Modules[1].Tasks[0]

	submission := models.Submission{
		StudentID:      student.ID,
		CourseID:       course.ID,
		ModuleID:       task.ModuleID,
		LessonID:       task.ID,
		Type:           models.SubmissionTypeAssignment,
		Status:         models.SubmissionStatusSubmitted,
		SubmissionLink: "https://github.com/linus/pool",
	}
	require.NoError(t, repo.Upsert(context.Background(), &submission))

	grade := 91.5
	gradedAt := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	submission.Status = models.SubmissionStatusGraded
	submission.Grade = &grade
	submission.Feedback = "Solid work"
	submission.GradedBy = &reviewer.ID
	submission.GradedAt = &gradedAt
	require.NoError(t, repo.Update(context.Background(), &submission))

	resubmitted := models.Submission{
		StudentID:      student.ID,
		CourseID:       course.ID,
		ModuleID:       task.ModuleID,
		LessonID:       task.ID,
		Type:           models.SubmissionTypeAssignment,
		Status:         models.SubmissionStatusSubmitted,
		SubmissionLink: "https://github.com/linus/pool-v2",
	}
	require.NoError(t, repo.Upsert(context.Background(), &resubmitted))

	stored, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
	require.Equal(t, "https://github.com/linus/pool-v2", stored.SubmissionLink)
	require.Nil(t, stored.Grade)
	require.Empty(t, stored.Feedback)
	require.Nil(t, stored.GradedBy)
	require.Nil(t, stored.GradedAt)
}
