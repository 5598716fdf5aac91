package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
)

func TestQuizSubmitAwardsOnlyOnFirstAttempt(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	student := f.student(t, "Ana")
	course := f.course(t, "Go Fundamentals")
	f.enroll(t, student, course, models.PaymentStatusPaid)

	module := course.Modules[0]
	quiz := module.Quizzes[0]
	svc := NewQuizService(f.deps)

	answers := map[string]json.RawMessage{
		questionKey(quiz.Questions[0]): json.RawMessage(`1`),
		questionKey(quiz.Questions[1]): json.RawMessage(`1`),
		questionKey(quiz.Questions[2]): json.RawMessage(`0`),
	}
	first, err := svc.Submit(ctx, student.ID, dto.QuizSubmitRequest{
		CourseID: course.ID,
		ModuleID: module.ID,
		QuizID:   quiz.ID,
		Answers:  answers,
	})
	require.NoError(t, err)
	require.Equal(t, 2, first.Score)
	require.Equal(t, 3, first.TotalQuestions)
	require.Equal(t, 67, first.Percentage)
	require.True(t, first.FirstSubmission)
	require.Equal(t, 50, first.XPEarned)
	require.Equal(t, 33, first.ProgressPercentage)
	require.Len(t, first.Results, 3)
	require.False(t, first.Results[2].IsCorrect)

	stored := f.reloadStudent(t, student.ID)
	require.Equal(t, 50, stored.XP)
	require.Equal(t, 1, stored.QuizzesCompleted)

	answers[questionKey(quiz.Questions[2])] = json.RawMessage(`1`)
	second, err := svc.Submit(ctx, student.ID, dto.QuizSubmitRequest{
		CourseID: course.ID,
		ModuleID: module.ID,
		QuizID:   quiz.ID,
		Answers:  answers,
	})
	require.NoError(t, err)
	require.Equal(t, 3, second.Score)
	require.Equal(t, 100, second.Percentage)
	require.False(t, second.FirstSubmission)
	require.Zero(t, second.XPEarned)
	require.Equal(t, 33, second.ProgressPercentage)

	stored = f.reloadStudent(t, student.ID)
	require.Equal(t, 50, stored.XP)
	require.Equal(t, 1, stored.QuizzesCompleted)

	var count int64
	require.NoError(t, f.db.Model(&models.Submission{}).Where("student_id = ?", student.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	submission, err := f.submissions.GetByLesson(ctx, student.ID, course.ID, quiz.ID, models.SubmissionTypeQuiz)
	require.NoError(t, err)
	require.NotNil(t, submission.Score)
	require.Equal(t, 3, *submission.Score)

	global, err := f.boards.GetEntry(ctx, student.ID, models.GlobalLeaderboardScope)
	require.NoError(t, err)
	require.Equal(t, 50, global.XP)
	require.Equal(t, 1, global.QuizzesCompleted)
	require.Equal(t, 1, global.Rank)

	perCourse, err := f.boards.GetEntry(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, 50, perCourse.XP)
}

func TestQuizSubmitTreatsMalformedAnswersAsIncorrect(t *testing.T) {
	f := newTestFixture(t)
	student := f.student(t, "Bo")
	course := f.course(t, "Go Fundamentals")
	f.enroll(t, student, course, models.PaymentStatusPaid)

	module := course.Modules[0]
	quiz := module.Quizzes[0]

	result, err := NewQuizService(f.deps).Submit(context.Background(), student.ID, dto.QuizSubmitRequest{
		CourseID: course.ID,
		ModuleID: module.ID,
		QuizID:   quiz.ID,
		Answers: map[string]json.RawMessage{
			questionKey(quiz.Questions[0]): json.RawMessage(`"b"`),
			questionKey(quiz.Questions[1]): json.RawMessage(`7`),
		},
	})
	require.NoError(t, err)
	require.Zero(t, result.Score)
	require.Zero(t, result.Percentage)
	for _, item := range result.Results {
		require.Nil(t, item.UserAnswer)
		require.False(t, item.IsCorrect)
	}
	require.True(t, result.FirstSubmission)
}

func TestQuizSubmitRequiresPaidEnrollment(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	course := f.course(t, "Go Fundamentals")
	module := course.Modules[0]
	quiz := module.Quizzes[0]
	svc := NewQuizService(f.deps)

	stranger := f.student(t, "Cy")
	_, err := svc.Submit(ctx, stranger.ID, dto.QuizSubmitRequest{CourseID: course.ID, ModuleID: module.ID, QuizID: quiz.ID})
	require.ErrorIs(t, err, ErrNotEnrolled)
	require.ErrorIs(t, err, ErrForbidden)

	pending := f.student(t, "Di")
	f.enroll(t, pending, course, models.PaymentStatusPending)
	_, err = svc.Submit(ctx, pending.ID, dto.QuizSubmitRequest{CourseID: course.ID, ModuleID: module.ID, QuizID: quiz.ID})
	require.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Submit(ctx, pending.ID, dto.QuizSubmitRequest{CourseID: course.ID + 100, ModuleID: module.ID, QuizID: quiz.ID})
	require.ErrorIs(t, err, ErrCourseNotFound)
	require.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
	require.Zero(t, f.reloadStudent(t, stranger.ID).XP)
}

func TestQuizSubmitRejectsUnknownItemsAndBlockedAccounts(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	student := f.student(t, "Ed")
	course := f.course(t, "Go Fundamentals")
	f.enroll(t, student, course, models.PaymentStatusPaid)
	module := course.Modules[0]
	svc := NewQuizService(f.deps)

	_, err := svc.Submit(ctx, student.ID, dto.QuizSubmitRequest{CourseID: course.ID, ModuleID: module.ID, QuizID: 9999})
	require.ErrorIs(t, err, ErrQuizNotFound)

	_, err = svc.Submit(ctx, student.ID, dto.QuizSubmitRequest{CourseID: course.ID, ModuleID: 9999, QuizID: module.Quizzes[0].ID})
	require.ErrorIs(t, err, ErrModuleNotFound)

	require.NoError(t, f.db.Model(&models.Student{}).Where("id = ?", student.ID).Update("account_status", models.AccountStatusBlocked).Error)
	_, err = svc.Submit(ctx, student.ID, dto.QuizSubmitRequest{CourseID: course.ID, ModuleID: module.ID, QuizID: module.Quizzes[0].ID})
	require.ErrorIs(t, err, ErrAccountBlocked)
}

func TestQuizListingHidesAnswerKey(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	student := f.student(t, "Fay")
	course := f.course(t, "Go Fundamentals")
	f.enroll(t, student, course, models.PaymentStatusPaid)
	svc := NewQuizService(f.deps)

	quiz := course.Modules[0].Quizzes[0]
	detail, err := svc.GetQuiz(ctx, student.ID, course.Slug, quiz.ID)
	require.NoError(t, err)
	require.Len(t, detail.Questions, 3)
	require.Equal(t, []string{"a", "b", "c"}, detail.Questions[0].Options)

	payload, err := json.Marshal(detail)
	require.NoError(t, err)
	require.NotContains(t, string(payload), "correct")

	summaries, err := svc.ListCourseQuizzes(ctx, student.ID, course.Slug)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.False(t, summaries[0].Completed)
	require.Nil(t, summaries[0].LastScore)

	_, err = svc.Submit(ctx, student.ID, dto.QuizSubmitRequest{
		CourseID: course.ID,
		ModuleID: course.Modules[0].ID,
		QuizID:   quiz.ID,
		Answers:  map[string]json.RawMessage{questionKey(quiz.Questions[0]): json.RawMessage(`1`)},
	})
	require.NoError(t, err)

	summaries, err = svc.ListCourseQuizzes(ctx, student.ID, course.Slug)
	require.NoError(t, err)
	require.True(t, summaries[0].Completed)
	require.NotNil(t, summaries[0].LastScore)
	require.Equal(t, 1, *summaries[0].LastScore)

	_, err = svc.GetQuiz(ctx, student.ID, "unknown-course", quiz.ID)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestQuizOverviewReportsCompletionPerCourse(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	student := f.student(t, "Oda")
	course := f.course(t, "Go Fundamentals")
	other := f.course(t, "Rust Basics")
	pending := f.course(t, "Zig Basics")
	f.enroll(t, student, course, models.PaymentStatusPaid)
	f.enroll(t, student, other, models.PaymentStatusPaid)
	f.enroll(t, student, pending, models.PaymentStatusPending)

	svc := NewQuizService(f.deps)
	quiz := course.Modules[0].Quizzes[0]
	_, err := svc.Submit(ctx, student.ID, dto.QuizSubmitRequest{CourseID: course.ID, ModuleID: course.Modules[0].ID, QuizID: quiz.ID})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, overview, 2)

	require.Equal(t, course.ID, overview[0].CourseID)
	require.Equal(t, "go-fundamentals", overview[0].CourseSlug)
	require.Equal(t, 1, overview[0].TotalQuizzes)
	require.Equal(t, 1, overview[0].CompletedQuizzes)
	require.Equal(t, 100, overview[0].Progress)

	require.Equal(t, other.ID, overview[1].CourseID)
	require.Zero(t, overview[1].CompletedQuizzes)
	require.Zero(t, overview[1].Progress)
}
