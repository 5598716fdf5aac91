package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

func TestAssignmentSubmitIsIdempotentForRewards(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	student := f.student(t, "Gus")
	course := f.course(t, "Go Fundamentals")
	f.enroll(t, student, course, models.PaymentStatusPaid)

	module := course.Modules[0]
	task := module.Tasks[0]
	svc := NewAssignmentService(f.deps)

	first, err := svc.Submit(ctx, student.ID, dto.AssignmentSubmitRequest{
		CourseID:       course.ID,
		ModuleID:       module.ID,
		TaskID:         task.ID,
		SubmissionLink: "https://github.com/gus/hello",
		Notes:          "<b>done</b>",
	})
	require.NoError(t, err)
	require.True(t, first.FirstSubmission)
	require.Equal(t, 50, first.XPEarned)
	require.Equal(t, "Assignment submitted successfully! You earned 50 XP!", first.Message)
	require.Equal(t, "done", first.Submission.Notes)
	require.Equal(t, models.SubmissionStatusSubmitted, first.Submission.Status)
	require.Equal(t, 33, first.ProgressPercentage)

	grade := 88.0
	require.NoError(t, f.db.Model(&models.Submission{}).Where("id = ?", first.Submission.ID).
		Updates(map[string]interface{}{"grade": grade, "feedback": "Nice", "status": models.SubmissionStatusGraded}).Error)

	second, err := svc.Submit(ctx, student.ID, dto.AssignmentSubmitRequest{
		CourseID:       course.ID,
		ModuleID:       module.ID,
		TaskID:         task.ID,
		SubmissionLink: "https://github.com/gus/hello-v2",
	})
	require.NoError(t, err)
	require.False(t, second.FirstSubmission)
	require.Zero(t, second.XPEarned)
	require.Equal(t, "Assignment updated successfully", second.Message)
	require.Equal(t, first.Submission.ID, second.Submission.ID)
	require.Equal(t, "https://github.com/gus/hello-v2", second.Submission.SubmissionLink)
	require.Equal(t, models.SubmissionStatusSubmitted, second.Submission.Status)
	require.Nil(t, second.Submission.Grade)
	require.Empty(t, second.Submission.Feedback)

	stored := f.reloadStudent(t, student.ID)
	require.Equal(t, 50, stored.XP)
	require.Equal(t, 1, stored.AssignmentsCompleted)
	require.Zero(t, stored.QuizzesCompleted)
}

func TestAssignmentSubmitValidatesLink(t *testing.T) {
	f := newTestFixture(t)
	student := f.student(t, "Hal")
	course := f.course(t, "Go Fundamentals")
	f.enroll(t, student, course, models.PaymentStatusPaid)
	module := course.Modules[0]

	_, err := NewAssignmentService(f.deps).Submit(context.Background(), student.ID, dto.AssignmentSubmitRequest{
		CourseID:       course.ID,
		ModuleID:       module.ID,
		TaskID:         module.Tasks[0].ID,
		SubmissionLink: "not a link",
	})
	require.Error(t, err)

	_, err = NewAssignmentService(f.deps).Submit(context.Background(), student.ID, dto.AssignmentSubmitRequest{
		CourseID:       course.ID,
		ModuleID:       course.Modules[1].ID,
		TaskID:         module.Tasks[0].ID,
		SubmissionLink: "https://example.com/x",
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCompletingEveryItemCompletesCourseOnce(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	student := f.student(t, "Ivy")
	course := f.course(t, "Go Fundamentals")
	f.enroll(t, student, course, models.PaymentStatusPaid)

	assignments := NewAssignmentService(f.deps)
	quizzes := NewQuizService(f.deps)

	quiz := course.Modules[0].Quizzes[0]
	quizResult, err := quizzes.Submit(ctx, student.ID, dto.QuizSubmitRequest{
		CourseID: course.ID,
		ModuleID: course.Modules[0].ID,
		QuizID:   quiz.ID,
		Answers:  map[string]json.RawMessage{questionKey(quiz.Questions[0]): json.RawMessage(`1`)},
	})
	require.NoError(t, err)
	require.False(t, quizResult.CourseCompleted)

	var last dto.AssignmentSubmitResponse
	progress := []int{quizResult.ProgressPercentage}
	for _, module := range course.Modules {
		for _, task := range module.Tasks {
			last, err = assignments.Submit(ctx, student.ID, dto.AssignmentSubmitRequest{
				CourseID:       course.ID,
				ModuleID:       module.ID,
				TaskID:         task.ID,
				SubmissionLink: "https://example.com/work",
			})
			require.NoError(t, err)
			progress = append(progress, last.ProgressPercentage)
		}
	}
	require.Equal(t, []int{33, 67, 100}, progress)
	require.True(t, last.CourseCompleted)

	enrollment, err := f.enrollments.Get(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.True(t, enrollment.IsCompleted)
	require.NotNil(t, enrollment.CompletionDate)
	completedAt := *enrollment.CompletionDate

	again, err := assignments.Submit(ctx, student.ID, dto.AssignmentSubmitRequest{
		CourseID:       course.ID,
		ModuleID:       course.Modules[1].ID,
		TaskID:         course.Modules[1].Tasks[0].ID,
		SubmissionLink: "https://example.com/work-v2",
	})
	require.NoError(t, err)
	require.False(t, again.CourseCompleted)
	require.Equal(t, 100, again.ProgressPercentage)

	enrollment, err = f.enrollments.Get(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.True(t, completedAt.Equal(*enrollment.CompletionDate))

	logs, total, err := f.activityLog.List(ctx, repository.ActivityLogFilter{
		ActorID:  &student.ID,
		Action:   models.ActivityCourseCompleted,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, logs, 1)

	stored := f.reloadStudent(t, student.ID)
	require.Equal(t, 150, stored.XP)
	require.Equal(t, 1, stored.QuizzesCompleted)
	require.Equal(t, 2, stored.AssignmentsCompleted)
}

func TestAssignmentOverviewAndCourseListing(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	student := f.student(t, "Jo")
	course := f.course(t, "Go Fundamentals")
	other := f.course(t, "Unpaid Course")
	f.enroll(t, student, course, models.PaymentStatusPaid)
	f.enroll(t, student, other, models.PaymentStatusPending)
	svc := NewAssignmentService(f.deps)

	module := course.Modules[0]
	_, err := svc.Submit(ctx, student.ID, dto.AssignmentSubmitRequest{
		CourseID:       course.ID,
		ModuleID:       module.ID,
		TaskID:         module.Tasks[0].ID,
		SubmissionLink: "https://example.com/hello",
	})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, overview, 1)
	require.Equal(t, course.ID, overview[0].CourseID)
	require.Equal(t, 2, overview[0].TotalAssignments)
	require.Equal(t, 1, overview[0].CompletedAssignments)
	require.Equal(t, 50, overview[0].Progress)

	listing, err := svc.ListCourseAssignments(ctx, student.ID, course.Slug)
	require.NoError(t, err)
	require.Equal(t, course.Slug, listing.Course.Slug)
	require.Len(t, listing.Assignments, 2)
	require.Equal(t, models.SubmissionStatusSubmitted, listing.Assignments[0].Status)
	require.True(t, listing.Assignments[0].IsCompleted)
	require.Equal(t, "https://example.com/hello", listing.Assignments[0].SubmissionLink)
	require.Equal(t, dto.AssignmentStatusPending, listing.Assignments[1].Status)
	require.Nil(t, listing.Assignments[1].SubmissionID)

	_, err = svc.ListCourseAssignments(ctx, student.ID, other.Slug)
	require.ErrorIs(t, err, ErrNotEnrolled)
}
