package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// courseAccess resolves a course together with the requesting student's paid
// enrollment, and records completed items against that enrollment.
type courseAccess struct {
	courses     repository.CourseRepository
	students    repository.StudentRepository
	enrollments repository.EnrollmentRepository
}

type enrolledCourse struct {
	course     models.Course
	student    models.Student
	enrollment models.Enrollment
}

type completionResult struct {
	first           bool
	progress        int
	courseCompleted bool
}

func (a courseAccess) activeStudent(ctx context.Context, studentID uint) (models.Student, error) {
	student, err := a.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, wrapInternal("load student", err)
	}
	if student.IsBlocked() {
		return models.Student{}, ErrAccountBlocked
	}
	return student, nil
}

func (a courseAccess) byID(ctx context.Context, studentID, courseID uint) (enrolledCourse, error) {
	course, err := a.courses.GetByID(ctx, courseID)
	if err != nil {
		return enrolledCourse{}, courseLookupError(err)
	}
	return a.enrolled(ctx, studentID, course)
}

func (a courseAccess) bySlug(ctx context.Context, studentID uint, slug string) (enrolledCourse, error) {
	course, err := a.courses.GetBySlug(ctx, slug)
	if err != nil {
		return enrolledCourse{}, courseLookupError(err)
	}
	return a.enrolled(ctx, studentID, course)
}

func (a courseAccess) enrolled(ctx context.Context, studentID uint, course models.Course) (enrolledCourse, error) {
	student, err := a.activeStudent(ctx, studentID)
	if err != nil {
		return enrolledCourse{}, err
	}

	enrollment, err := a.enrollments.Get(ctx, studentID, course.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return enrolledCourse{}, ErrNotEnrolled
		}
		return enrolledCourse{}, wrapInternal("load enrollment", err)
	}
	if !enrollment.IsPaid() {
		return enrolledCourse{}, ErrNotEnrolled
	}

	return enrolledCourse{course: course, student: student, enrollment: enrollment}, nil
}

// complete marks an item as done through enrollments, which is normally bound to
// the caller's transaction. Only the call that inserts the completion sees
// first=true; progress is then recomputed from the full completion sets.
func (a courseAccess) complete(ctx context.Context, enrollments repository.EnrollmentRepository, target enrolledCourse, itemType string, itemID uint, at time.Time) (completionResult, error) {
	first, err := enrollments.AddCompletion(ctx, target.enrollment.ID, itemType, itemID)
	if err != nil {
		return completionResult{}, wrapInternal("record completion", err)
	}
	if !first {
		return completionResult{progress: target.enrollment.ProgressPercentage}, nil
	}

	completions, err := enrollments.ListCompletions(ctx, target.enrollment.ID)
	if err != nil {
		return completionResult{}, wrapInternal("list completions", err)
	}
	quizIDs, taskIDs := completionSets(completions)
	progress := ComputeProgress(target.course, quizIDs, taskIDs)

	completedNow, err := enrollments.UpdateProgress(ctx, target.enrollment.ID, progress, at)
	if err != nil {
		return completionResult{}, wrapInternal("update progress", err)
	}

	return completionResult{first: true, progress: progress, courseCompleted: completedNow}, nil
}

func courseLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCourseNotFound
	}
	return wrapInternal("load course", err)
}
