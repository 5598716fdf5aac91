package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// QuizService lists, serves and grades course quizzes.
type QuizService interface {
	Overview(ctx context.Context, studentID uint) ([]dto.CourseQuizOverview, error)
	ListCourseQuizzes(ctx context.Context, studentID uint, slug string) ([]dto.QuizSummary, error)
	GetQuiz(ctx context.Context, studentID uint, slug string, quizID uint) (dto.QuizDetailResponse, error)
	Submit(ctx context.Context, studentID uint, req dto.QuizSubmitRequest) (dto.QuizResultResponse, error)
}

type quizService struct {
	access      courseAccess
	enrollments repository.EnrollmentRepository
	submissions repository.SubmissionRepository
	rewards     rewardLedger
	policy      GamificationPolicy
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewQuizService constructs the quiz service.
func NewQuizService(deps GamificationDeps) QuizService {
	logger := deps.Logger.With().Str("component", "quiz_service").Logger()
	return &quizService{
		access:      deps.access(),
		enrollments: deps.Enrollments,
		submissions: deps.Submissions,
		rewards:     deps.ledger(logger),
		policy:      deps.Policy.normalized(),
		validator:   deps.Validator,
		logger:      logger,
		tracer:      otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/quiz"),
		now:         deps.clock(),
	}
}

// Overview reports quiz completion per paid course.
func (s *quizService) Overview(ctx context.Context, studentID uint) ([]dto.CourseQuizOverview, error) {
	if _, err := s.access.activeStudent(ctx, studentID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListPaidByStudent(ctx, studentID)
	if err != nil {
		return nil, wrapInternal("list enrollments", err)
	}

	overview := make([]dto.CourseQuizOverview, 0, len(enrollments))
	for _, enrollment := range enrollments {
		completed := enrollment.CompletedQuizIDs()
		total, done := 0, 0
		for _, module := range enrollment.Course.Modules {
			total += len(module.Quizzes)
			for _, quiz := range module.Quizzes {
				if _, ok := completed[quiz.ID]; ok {
					done++
				}
			}
		}

		overview = append(overview, dto.CourseQuizOverview{
			CourseID:         enrollment.Course.ID,
			CourseTitle:      enrollment.Course.Title,
			CourseSlug:       enrollment.Course.Slug,
			Thumbnail:        enrollment.Course.Thumbnail,
			TotalQuizzes:     total,
			CompletedQuizzes: done,
			Progress:         percentage(done, total),
		})
	}

	return overview, nil
}

func (s *quizService) ListCourseQuizzes(ctx context.Context, studentID uint, slug string) ([]dto.QuizSummary, error) {
	target, err := s.access.bySlug(ctx, studentID, slug)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByStudentCourse(ctx, studentID, target.course.ID, models.SubmissionTypeQuiz)
	if err != nil {
		return nil, wrapInternal("list quiz submissions", err)
	}
	byQuiz := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byQuiz[submission.LessonID] = submission
	}

	completed := target.enrollment.CompletedQuizIDs()
	summaries := make([]dto.QuizSummary, 0)
	for _, module := range target.course.Modules {
		for _, quiz := range module.Quizzes {
			_, done := completed[quiz.ID]
			summary := dto.QuizSummary{
				ID:            quiz.ID,
				ModuleID:      module.ID,
				ModuleTitle:   module.Title,
				Title:         quiz.Title,
				QuestionCount: len(quiz.Questions),
				Completed:     done,
			}
			if submission, ok := byQuiz[quiz.ID]; ok {
				submittedAt := submission.UpdatedAt
				summary.LastScore = submission.Score
				summary.TotalQuestions = submission.TotalQuestions
				summary.SubmittedAt = &submittedAt
			}
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

func (s *quizService) GetQuiz(ctx context.Context, studentID uint, slug string, quizID uint) (dto.QuizDetailResponse, error) {
	target, err := s.access.bySlug(ctx, studentID, slug)
	if err != nil {
		return dto.QuizDetailResponse{}, err
	}

	for _, module := range target.course.Modules {
		if quiz, ok := module.FindQuiz(quizID); ok {
			return dto.NewQuizDetailResponse(target.course.ID, quiz), nil
		}
	}

	return dto.QuizDetailResponse{}, ErrQuizNotFound
}

// Submit grades the answers and stores the attempt. XP, the completion counter and
// progress only change on the student's first submission of the quiz.
func (s *quizService) Submit(ctx context.Context, studentID uint, req dto.QuizSubmitRequest) (dto.QuizResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.Int64("quiz.student_id", int64(studentID)),
		attribute.Int64("quiz.id", int64(req.QuizID)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.QuizResultResponse{}, err
	}

	target, err := s.access.byID(ctx, studentID, req.CourseID)
	if err != nil {
		span.RecordError(err)
		return dto.QuizResultResponse{}, err
	}

	module, ok := target.course.FindModule(req.ModuleID)
	if !ok {
		return dto.QuizResultResponse{}, ErrModuleNotFound
	}
	quiz, ok := module.FindQuiz(req.QuizID)
	if !ok {
		return dto.QuizResultResponse{}, ErrQuizNotFound
	}

	grade := GradeQuiz(quiz, req.Answers)

	answers := req.Answers
	if answers == nil {
		answers = map[string]json.RawMessage{}
	}
	encodedAnswers, err := json.Marshal(answers)
	if err != nil {
		return dto.QuizResultResponse{}, wrapInternal("encode answers", err)
	}

	score := grade.Score
	percent := float64(grade.Percentage)
	submission := models.Submission{
		EnrollmentID:   target.enrollment.ID,
		StudentID:      studentID,
		CourseID:       target.course.ID,
		ModuleID:       module.ID,
		LessonID:       quiz.ID,
		Type:           models.SubmissionTypeQuiz,
		Status:         models.SubmissionStatusGraded,
		Score:          &score,
		TotalQuestions: grade.TotalQuestions,
		Grade:          &percent,
		Answers:        encodedAnswers,
	}
	courseID := target.course.ID
	quizID := quiz.ID
	rw := reward{
		studentID:  studentID,
		courseID:   &courseID,
		xp:         s.policy.QuizXP,
		counters:   dto.LeaderboardCounters{QuizzesCompleted: 1},
		source:     models.SubmissionTypeQuiz,
		action:     models.ActivityXPAwarded,
		entityType: "quiz",
		entityID:   &quizID,
		metadata: map[string]interface{}{
			"course_id":  courseID,
			"score":      grade.Score,
			"percentage": grade.Percentage,
		},
	}

	var (
		completion completionResult
		scopes     []uint
	)
	err = s.rewards.atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		if err := stores.Submissions.Upsert(ctx, &submission); err != nil {
			return wrapInternal("store quiz submission", err)
		}
		var err error
		completion, err = s.access.complete(ctx, stores.Enrollments, target, models.CompletionItemQuiz, quiz.ID, s.now().UTC())
		if err != nil || !completion.first {
			return err
		}
		scopes, err = s.rewards.credit(ctx, stores, rw)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quiz_submit_failed")
		return dto.QuizResultResponse{}, err
	}
	observability.Submissions().WithLabelValues(models.SubmissionTypeQuiz, strconv.FormatBool(completion.first)).Inc()
	span.SetAttributes(attribute.Bool("quiz.first_submission", completion.first))

	response := dto.QuizResultResponse{
		QuizGrade:          grade,
		FirstSubmission:    completion.first,
		ProgressPercentage: completion.progress,
		CourseCompleted:    completion.courseCompleted,
	}

	if !completion.first {
		return response, nil
	}

	s.rewards.announce(ctx, rw, scopes)
	response.XPEarned = s.policy.QuizXP

	if completion.courseCompleted {
		s.rewards.courseCompleted(ctx, studentID, target.course)
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("quiz_id", quiz.ID).
		Int("score", grade.Score).
		Int("xp", s.policy.QuizXP).
		Msg("quiz completed")

	return response, nil
}
