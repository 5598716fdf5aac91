package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// CourseService serves enrolled courses, their progress and certificates.
type CourseService interface {
	ListMyCourses(ctx context.Context, studentID uint) ([]dto.CourseProgress, error)
	GetCourse(ctx context.Context, studentID uint, slug string) (dto.CourseDetailResponse, error)
	ListModules(ctx context.Context, studentID uint, slug string) ([]dto.ModuleOutline, error)
	GetProgress(ctx context.Context, studentID uint, slug string) (dto.CourseProgressDetail, error)
	MarkModuleAccessed(ctx context.Context, studentID uint, req dto.ModuleAccessRequest) (dto.ModuleAccessResponse, error)
	ListCertificates(ctx context.Context, studentID uint) ([]dto.CertificateResponse, error)
	GetCertificate(ctx context.Context, studentID uint, slug string) (dto.CertificateResponse, error)
}

type courseService struct {
	access      courseAccess
	enrollments repository.EnrollmentRepository
	rewards     rewardLedger
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(deps GamificationDeps) CourseService {
	logger := deps.Logger.With().Str("component", "course_service").Logger()
	return &courseService{
		access:      deps.access(),
		enrollments: deps.Enrollments,
		rewards:     deps.ledger(logger),
		validator:   deps.Validator,
		logger:      logger,
		now:         deps.clock(),
	}
}

func (s *courseService) ListMyCourses(ctx context.Context, studentID uint) ([]dto.CourseProgress, error) {
	if _, err := s.access.activeStudent(ctx, studentID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListPaidByStudent(ctx, studentID)
	if err != nil {
		return nil, wrapInternal("list enrollments", err)
	}

	courses := make([]dto.CourseProgress, 0, len(enrollments))
	for _, enrollment := range enrollments {
		courses = append(courses, dto.NewCourseProgress(enrollment))
	}
	return courses, nil
}

func (s *courseService) GetCourse(ctx context.Context, studentID uint, slug string) (dto.CourseDetailResponse, error) {
	target, err := s.access.bySlug(ctx, studentID, slug)
	if err != nil {
		return dto.CourseDetailResponse{}, err
	}

	enrollment := target.enrollment
	enrollment.Course = target.course
	quizIDs, taskIDs := completionSets(enrollment.Completions)

	return dto.CourseDetailResponse{
		CourseProgress: dto.NewCourseProgress(enrollment),
		Description:    target.course.Description,
		Modules:        ModuleOutlines(target.course, quizIDs, taskIDs),
	}, nil
}

func (s *courseService) ListModules(ctx context.Context, studentID uint, slug string) ([]dto.ModuleOutline, error) {
	target, err := s.access.bySlug(ctx, studentID, slug)
	if err != nil {
		return nil, err
	}

	quizIDs, taskIDs := completionSets(target.enrollment.Completions)
	return ModuleOutlines(target.course, quizIDs, taskIDs), nil
}

// MarkModuleAccessed records the module the student opened last. It feeds the
// "last accessed" hint of the course list and never changes progress or XP.
func (s *courseService) MarkModuleAccessed(ctx context.Context, studentID uint, req dto.ModuleAccessRequest) (dto.ModuleAccessResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ModuleAccessResponse{}, err
	}

	target, err := s.access.byID(ctx, studentID, req.CourseID)
	if err != nil {
		return dto.ModuleAccessResponse{}, err
	}
	module, ok := target.course.FindModule(req.ModuleID)
	if !ok {
		return dto.ModuleAccessResponse{}, ErrModuleNotFound
	}

	at := s.now().UTC()
	if err := s.enrollments.RecordAccess(ctx, target.enrollment.ID, module.ID, at); err != nil {
		return dto.ModuleAccessResponse{}, wrapInternal("record module access", err)
	}
	s.rewards.invalidate(ctx, studentID)

	return dto.ModuleAccessResponse{
		CourseID:       target.course.ID,
		ModuleID:       module.ID,
		LastAccessedAt: at,
	}, nil
}

// GetProgress recomputes progress from the completed items. A stored percentage that
// has drifted from the course structure is corrected before responding.
func (s *courseService) GetProgress(ctx context.Context, studentID uint, slug string) (dto.CourseProgressDetail, error) {
	target, err := s.access.bySlug(ctx, studentID, slug)
	if err != nil {
		return dto.CourseProgressDetail{}, err
	}

	quizIDs, taskIDs := completionSets(target.enrollment.Completions)
	progress := ComputeProgress(target.course, quizIDs, taskIDs)
	total, completed := countItems(target.course.Modules, quizIDs, taskIDs)

	enrollment := target.enrollment
	if progress != enrollment.ProgressPercentage {
		at := s.now().UTC()
		completedNow, err := s.enrollments.UpdateProgress(ctx, enrollment.ID, progress, at)
		if err != nil {
			return dto.CourseProgressDetail{}, wrapInternal("update progress", err)
		}
		s.logger.Info().
			Uint("enrollment_id", enrollment.ID).
			Int("stored", enrollment.ProgressPercentage).
			Int("computed", progress).
			Msg("corrected drifted progress")

		enrollment.ProgressPercentage = progress
		if completedNow {
			enrollment.IsCompleted = true
			enrollment.CompletionDate = &at
			s.rewards.courseCompleted(ctx, studentID, target.course)
		}
	}
	enrollment.Course = target.course

	return dto.CourseProgressDetail{
		CourseProgress: dto.NewCourseProgress(enrollment),
		TotalItems:     total,
		CompletedItems: completed,
		Modules:        ComputeModuleProgress(target.course, quizIDs, taskIDs),
	}, nil
}

func (s *courseService) ListCertificates(ctx context.Context, studentID uint) ([]dto.CertificateResponse, error) {
	student, err := s.access.activeStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListPaidByStudent(ctx, studentID)
	if err != nil {
		return nil, wrapInternal("list enrollments", err)
	}

	certificates := make([]dto.CertificateResponse, 0)
	for _, enrollment := range enrollments {
		if certificate, ok := newCertificate(student, enrollment, enrollment.Course); ok {
			certificates = append(certificates, certificate)
		}
	}
	return certificates, nil
}

func (s *courseService) GetCertificate(ctx context.Context, studentID uint, slug string) (dto.CertificateResponse, error) {
	target, err := s.access.bySlug(ctx, studentID, slug)
	if err != nil {
		return dto.CertificateResponse{}, err
	}

	certificate, ok := newCertificate(target.student, target.enrollment, target.course)
	if !ok {
		return dto.CertificateResponse{}, ErrCourseNotCompleted
	}
	return certificate, nil
}

func newCertificate(student models.Student, enrollment models.Enrollment, course models.Course) (dto.CertificateResponse, bool) {
	if !enrollment.IsCompleted || enrollment.CompletionDate == nil {
		return dto.CertificateResponse{}, false
	}
	issuedAt := enrollment.CompletionDate.UTC()
	return dto.CertificateResponse{
		CertificateNumber: dto.CertificateNumber(enrollment, issuedAt),
		Course:            dto.NewCourseLite(course),
		StudentName:       student.Name,
		IssuedAt:          issuedAt,
	}, true
}
