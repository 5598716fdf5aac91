package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	CourseID  *uint
	StudentID *uint
	Type      *string
	Status    *string
	Page      int
	PageSize  int
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	GetByLesson(ctx context.Context, studentID, courseID, lessonID uint, submissionType string) (models.Submission, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID uint, submissionType string) ([]models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

var submissionLessonKey = []clause.Column{
	{Name: "student_id"},
	{Name: "course_id"},
	{Name: "lesson_id"},
	{Name: "type"},
}

// Upsert writes the submission keyed by (student, course, lesson, type), overwriting
// the attempt content of an existing row. An assignment resubmission goes back to
// review, so any earlier grade is cleared with it. The stored row is loaded back
// into submission.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	columns := []string{"enrollment_id", "module_id", "status", "updated_at"}
	switch submission.Type {
	case models.SubmissionTypeQuiz:
		columns = append(columns, "score", "total_questions", "answers", "grade")
	default:
		columns = append(columns, "submission_link", "notes", "grade", "feedback", "graded_by", "graded_at")
		submission.Grade = nil
		submission.Feedback = ""
		submission.GradedBy = nil
		submission.GradedAt = nil
	}

	if submission.UpdatedAt.IsZero() {
		submission.UpdatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).
		Omit("Student", "Course").
		Clauses(clause.OnConflict{
			Columns:   submissionLessonKey,
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(submission).Error; err != nil {
		return err
	}

	stored, err := r.GetByLesson(ctx, submission.StudentID, submission.CourseID, submission.LessonID, submission.Type)
	if err != nil {
		return err
	}
	*submission = stored
	return nil
}

func (r *submissionRepository) GetByLesson(ctx context.Context, studentID, courseID, lessonID uint, submissionType string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND lesson_id = ? AND type = ?", studentID, courseID, lessonID, submissionType).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByStudentCourse(ctx context.Context, studentID, courseID uint, submissionType string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND type = ?", studentID, courseID, submissionType).
		Order("updated_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var submissions []models.Submission
	if err := query.Preload("Student").Order("updated_at DESC, id DESC").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Student").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Student", "Course").Save(submission).Error
}
