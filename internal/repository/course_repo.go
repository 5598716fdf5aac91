package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// CourseRepository reads the course catalog structure.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetBySlug(ctx context.Context, slug string) (models.Course, error)
	UpsertBySlug(ctx context.Context, course *models.Course) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func (r *courseRepository) withStructure(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Modules", ordered).
		Preload("Modules.Quizzes", ordered).
		Preload("Modules.Quizzes.Questions", ordered).
		Preload("Modules.Tasks", ordered)
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.withStructure(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (models.Course, error) {
	var course models.Course
	if err := r.withStructure(ctx).Where("slug = ?", slug).First(&course).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

// UpsertBySlug creates the course with its full structure, or refreshes the
// descriptive fields of an existing course with the same slug. Existing modules
// are left untouched so completion records keep pointing at valid items.
func (r *courseRepository) UpsertBySlug(ctx context.Context, course *models.Course) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if course.Slug == "" {
			if err := course.BeforeSave(tx); err != nil {
				return err
			}
		}

		var existing models.Course
		err := tx.Where("slug = ?", course.Slug).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Create(course).Error
		case err != nil:
			return err
		}

		course.ID = existing.ID
		return tx.Model(&existing).Updates(map[string]interface{}{
			"title":       course.Title,
			"description": course.Description,
			"thumbnail":   course.Thumbnail,
		}).Error
	})
	if err != nil {
		return false, err
	}

	return created, nil
}
