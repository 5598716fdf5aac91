package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// EnrollmentRepository persists enrollments and their completed items.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Get(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	ListPaidByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	ListCompletions(ctx context.Context, enrollmentID uint) ([]models.EnrollmentCompletion, error)
	AddCompletion(ctx context.Context, enrollmentID uint, itemType string, itemID uint) (bool, error)
	UpdateProgress(ctx context.Context, enrollmentID uint, progress int, at time.Time) (bool, error)
	RecordAccess(ctx context.Context, enrollmentID, moduleID uint, at time.Time) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Course", "Student").Create(enrollment).Error
}

func (r *enrollmentRepository) Get(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Completions").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) ListPaidByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Completions").
		Preload("Course").
		Preload("Course.Modules", ordered).
		Preload("Course.Modules.Quizzes", ordered).
		Preload("Course.Modules.Tasks", ordered).
		Where("student_id = ? AND payment_status = ?", studentID, models.PaymentStatusPaid).
		Order("created_at ASC, id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListCompletions(ctx context.Context, enrollmentID uint) ([]models.EnrollmentCompletion, error) {
	var completions []models.EnrollmentCompletion
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("id ASC").
		Find(&completions).Error; err != nil {
		return nil, err
	}

	return completions, nil
}

// AddCompletion records a completed item and reports whether this call inserted it.
// Concurrent callers for the same item see exactly one true result.
func (r *enrollmentRepository) AddCompletion(ctx context.Context, enrollmentID uint, itemType string, itemID uint) (bool, error) {
	completion := models.EnrollmentCompletion{
		EnrollmentID: enrollmentID,
		ItemType:     itemType,
		ItemID:       itemID,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&completion)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// UpdateProgress stores the recomputed percentage. When progress reaches 100 the
// enrollment is marked completed; the completion date is only ever written once and
// the returned flag reports whether this call wrote it.
func (r *enrollmentRepository) UpdateProgress(ctx context.Context, enrollmentID uint, progress int, at time.Time) (bool, error) {
	completedNow := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Enrollment{}).
			Where("id = ?", enrollmentID).
			Update("progress_percentage", progress).Error; err != nil {
			return err
		}

		if progress < 100 {
			return nil
		}

		result := tx.Model(&models.Enrollment{}).
			Where("id = ? AND completion_date IS NULL", enrollmentID).
			Updates(map[string]interface{}{
				"is_completed":    true,
				"completion_date": at,
			})
		if result.Error != nil {
			return result.Error
		}
		completedNow = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	return completedNow, nil
}

// RecordAccess remembers the module the student opened last. It never affects progress.
func (r *enrollmentRepository) RecordAccess(ctx context.Context, enrollmentID, moduleID uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ?", enrollmentID).
		Updates(map[string]interface{}{
			"last_accessed_at": at,
			"last_module_id":   moduleID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
