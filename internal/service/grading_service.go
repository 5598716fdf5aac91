package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

const defaultSubmissionPageSize = 20

// GradingService encapsulates grading workflows for administrators and teachers.
// Grading never changes XP; rewards belong to the first submission only.
type GradingService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) (dto.SubmissionListResponse, error)
	Grade(ctx context.Context, actor ActivityActor, submissionID uint, req dto.SubmissionGradeRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	repo       repository.SubmissionRepository
	activity   ActivityRecorder
	dashboards DashboardInvalidator
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(repo repository.SubmissionRepository, activity ActivityRecorder, dashboards DashboardInvalidator, validator *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		repo:       repo,
		activity:   activity,
		dashboards: dashboards,
		validator:  validator,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "grading_service").Logger(),
		now:        time.Now,
	}
}

func (s *gradingService) List(ctx context.Context, filter dto.SubmissionFilter) (dto.SubmissionListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.SubmissionListResponse{}, err
	}

	page := maxInt(filter.Page, 1)
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultSubmissionPageSize
	}

	items, total, err := s.repo.List(ctx, repository.SubmissionFilter{
		CourseID:  filter.CourseID,
		StudentID: filter.StudentID,
		Type:      filter.Type,
		Status:    filter.Status,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return dto.SubmissionListResponse{}, wrapInternal("list submissions", err)
	}

	return dto.SubmissionListResponse{
		Items:      dto.NewSubmissionResponseSlice(items),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *gradingService) Grade(ctx context.Context, actor ActivityActor, submissionID uint, req dto.SubmissionGradeRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, wrapInternal("load submission", err)
	}

	if req.Grade != nil {
		grade := *req.Grade
		submission.Grade = &grade
	}
	if req.Feedback != nil {
		submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(*req.Feedback))
	}
	if req.Status != nil {
		submission.Status = *req.Status
	}

	if submission.IsGraded() {
		if submission.Grade == nil {
			span.SetStatus(codes.Error, "grade_required")
			return dto.SubmissionResponse{}, ErrGradeRequired
		}
		gradedAt := s.now().UTC()
		gradedBy := actor.ID
		submission.GradedAt = &gradedAt
		submission.GradedBy = &gradedBy
	}

	if err := s.repo.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, wrapInternal("update submission", err)
	}

	if s.activity != nil {
		metadata := map[string]interface{}{
			"submission_id": submission.ID,
			"student_id":    submission.StudentID,
			"course_id":     submission.CourseID,
			"status":        submission.Status,
		}
		if submission.Grade != nil {
			metadata["grade"] = *submission.Grade
		}
		if _, err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.ActivitySubmissionGraded,
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata:   metadata,
		}); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to record grading activity")
		}
	}

	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, submission.StudentID)
	}

	span.SetAttributes(attribute.String("grading.status", submission.Status))
	return dto.NewSubmissionResponse(submission), nil
}
