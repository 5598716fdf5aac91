package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
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

// AssignmentService exposes student-facing assignment workflows.
type AssignmentService interface {
	Overview(ctx context.Context, studentID uint) ([]dto.CourseAssignmentOverview, error)
	ListCourseAssignments(ctx context.Context, studentID uint, slug string) (dto.CourseAssignmentsResponse, error)
	Submit(ctx context.Context, studentID uint, req dto.AssignmentSubmitRequest) (dto.AssignmentSubmitResponse, error)
}

type assignmentService struct {
	access      courseAccess
	enrollments repository.EnrollmentRepository
	submissions repository.SubmissionRepository
	rewards     rewardLedger
	policy      GamificationPolicy
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(deps GamificationDeps) AssignmentService {
	logger := deps.Logger.With().Str("component", "assignment_service").Logger()
	return &assignmentService{
		access:      deps.access(),
		enrollments: deps.Enrollments,
		submissions: deps.Submissions,
		rewards:     deps.ledger(logger),
		policy:      deps.Policy.normalized(),
		validator:   deps.Validator,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger,
		tracer:      otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/assignment"),
		now:         deps.clock(),
	}
}

func (s *assignmentService) Overview(ctx context.Context, studentID uint) ([]dto.CourseAssignmentOverview, error) {
	if _, err := s.access.activeStudent(ctx, studentID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListPaidByStudent(ctx, studentID)
	if err != nil {
		return nil, wrapInternal("list enrollments", err)
	}

	overview := make([]dto.CourseAssignmentOverview, 0, len(enrollments))
	for _, enrollment := range enrollments {
		completed := enrollment.CompletedTaskIDs()
		total, done := 0, 0
		for _, module := range enrollment.Course.Modules {
			total += len(module.Tasks)
			for _, task := range module.Tasks {
				if _, ok := completed[task.ID]; ok {
					done++
				}
			}
		}

		overview = append(overview, dto.CourseAssignmentOverview{
			CourseID:             enrollment.Course.ID,
			CourseTitle:          enrollment.Course.Title,
			CourseSlug:           enrollment.Course.Slug,
			Thumbnail:            enrollment.Course.Thumbnail,
			TotalAssignments:     total,
			CompletedAssignments: done,
			Progress:             percentage(done, total),
		})
	}

	return overview, nil
}

func (s *assignmentService) ListCourseAssignments(ctx context.Context, studentID uint, slug string) (dto.CourseAssignmentsResponse, error) {
	target, err := s.access.bySlug(ctx, studentID, slug)
	if err != nil {
		return dto.CourseAssignmentsResponse{}, err
	}

	submissions, err := s.submissions.ListByStudentCourse(ctx, studentID, target.course.ID, models.SubmissionTypeAssignment)
	if err != nil {
		return dto.CourseAssignmentsResponse{}, wrapInternal("list assignment submissions", err)
	}
	byTask := make(map[uint]*models.Submission, len(submissions))
	for i := range submissions {
		byTask[submissions[i].LessonID] = &submissions[i]
	}

	completed := target.enrollment.CompletedTaskIDs()
	items := make([]dto.CourseAssignmentItem, 0)
	for _, module := range target.course.Modules {
		for _, task := range module.Tasks {
			_, done := completed[task.ID]
			items = append(items, dto.NewCourseAssignmentItem(module, task, done, byTask[task.ID]))
		}
	}

	return dto.CourseAssignmentsResponse{
		Course:      dto.NewCourseLite(target.course),
		Assignments: items,
	}, nil
}

// Submit stores the latest link and notes for a task. Only the first submission of a
// task marks it completed and awards XP; later calls just overwrite the content.
func (s *assignmentService) Submit(ctx context.Context, studentID uint, req dto.AssignmentSubmitRequest) (dto.AssignmentSubmitResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.submit", trace.WithAttributes(
		attribute.Int64("assignment.student_id", int64(studentID)),
		attribute.Int64("assignment.task_id", int64(req.TaskID)),
	))
	defer span.End()

	req.SubmissionLink = strings.TrimSpace(req.SubmissionLink)
	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssignmentSubmitResponse{}, err
	}

	target, err := s.access.byID(ctx, studentID, req.CourseID)
	if err != nil {
		span.RecordError(err)
		return dto.AssignmentSubmitResponse{}, err
	}

	module, ok := target.course.FindModule(req.ModuleID)
	if !ok {
		return dto.AssignmentSubmitResponse{}, ErrModuleNotFound
	}
	task, ok := module.FindTask(req.TaskID)
	if !ok {
		return dto.AssignmentSubmitResponse{}, ErrTaskNotFound
	}

	submission := models.Submission{
		EnrollmentID:   target.enrollment.ID,
		StudentID:      studentID,
		CourseID:       target.course.ID,
		ModuleID:       module.ID,
		LessonID:       task.ID,
		Type:           models.SubmissionTypeAssignment,
		Status:         models.SubmissionStatusSubmitted,
		SubmissionLink: req.SubmissionLink,
		Notes:          strings.TrimSpace(s.sanitizer.Sanitize(req.Notes)),
	}
	courseID := target.course.ID
	taskID := task.ID
	rw := reward{
		studentID:  studentID,
		courseID:   &courseID,
		xp:         s.policy.AssignmentXP,
		counters:   dto.LeaderboardCounters{AssignmentsCompleted: 1},
		source:     models.SubmissionTypeAssignment,
		action:     models.ActivityXPAwarded,
		entityType: "task",
		entityID:   &taskID,
		metadata: map[string]interface{}{
			"course_id":       courseID,
			"submission_link": submission.SubmissionLink,
		},
	}

	var (
		completion completionResult
		scopes     []uint
	)
	err = s.rewards.atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		if err := stores.Submissions.Upsert(ctx, &submission); err != nil {
			return wrapInternal("store assignment submission", err)
		}
		var err error
		completion, err = s.access.complete(ctx, stores.Enrollments, target, models.CompletionItemTask, task.ID, s.now().UTC())
		if err != nil || !completion.first {
			return err
		}
		scopes, err = s.rewards.credit(ctx, stores, rw)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_submit_failed")
		return dto.AssignmentSubmitResponse{}, err
	}
	observability.Submissions().WithLabelValues(models.SubmissionTypeAssignment, strconv.FormatBool(completion.first)).Inc()
	span.SetAttributes(attribute.Bool("assignment.first_submission", completion.first))

	response := dto.AssignmentSubmitResponse{
		Submission:         dto.NewSubmissionResponse(submission),
		FirstSubmission:    completion.first,
		ProgressPercentage: completion.progress,
		CourseCompleted:    completion.courseCompleted,
		Message:            "Assignment updated successfully",
	}

	if !completion.first {
		return response, nil
	}

	s.rewards.announce(ctx, rw, scopes)
	response.XPEarned = s.policy.AssignmentXP
	response.Message = fmt.Sprintf("Assignment submitted successfully! You earned %d XP!", s.policy.AssignmentXP)

	if completion.courseCompleted {
		s.rewards.courseCompleted(ctx, studentID, target.course)
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("task_id", task.ID).
		Int("xp", s.policy.AssignmentXP).
		Msg("assignment completed")

	return response, nil
}
