package dto

import (
	"fmt"
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// CourseLite summarizes a course in nested responses.
type CourseLite struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Thumbnail string `json:"thumbnail"`
}

// NewCourseLite converts a course model into its summary.
func NewCourseLite(course models.Course) CourseLite {
	return CourseLite{
		ID:        course.ID,
		Title:     course.Title,
		Slug:      course.Slug,
		Thumbnail: course.Thumbnail,
	}
}

// CourseProgress reports a student's progress within an enrolled course.
type CourseProgress struct {
	Course             CourseLite `json:"course"`
	ProgressPercentage int        `json:"progress_percentage"`
	IsCompleted        bool       `json:"is_completed"`
	CompletionDate     *time.Time `json:"completion_date"`
	LastAccessedAt     *time.Time `json:"last_accessed_at"`
	LastModuleID       *uint      `json:"last_module_id"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
}

// NewCourseProgress converts an enrollment with its course into a progress DTO.
func NewCourseProgress(enrollment models.Enrollment) CourseProgress {
	return CourseProgress{
		Course:             NewCourseLite(enrollment.Course),
		ProgressPercentage: enrollment.ProgressPercentage,
		IsCompleted:        enrollment.IsCompleted,
		CompletionDate:     enrollment.CompletionDate,
		LastAccessedAt:     enrollment.LastAccessedAt,
		LastModuleID:       enrollment.LastModuleID,
		EnrolledAt:         enrollment.CreatedAt,
	}
}

// ModuleProgress breaks course progress down per module.
type ModuleProgress struct {
	ModuleID       uint   `json:"module_id"`
	Title          string `json:"title"`
	TotalItems     int    `json:"total_items"`
	CompletedItems int    `json:"completed_items"`
	Percentage     int    `json:"percentage"`
}

// CourseProgressDetail is the response of the course progress endpoint.
type CourseProgressDetail struct {
	CourseProgress
	TotalItems     int              `json:"total_items"`
	CompletedItems int              `json:"completed_items"`
	Modules        []ModuleProgress `json:"modules"`
}

// CourseDetailResponse describes an enrolled course with its module outline.
type CourseDetailResponse struct {
	CourseProgress
	Description string          `json:"description"`
	Modules     []ModuleOutline `json:"modules"`
}

// ModuleOutline lists the lessons of a module with the student's completion state.
type ModuleOutline struct {
	ID             uint         `json:"id"`
	Title          string       `json:"title"`
	Position       int          `json:"position"`
	TotalItems     int          `json:"total_items"`
	CompletedItems int          `json:"completed_items"`
	Percentage     int          `json:"percentage"`
	Items          []ModuleItem `json:"items"`
}

// ModuleItem is a quiz or task inside a module outline.
type ModuleItem struct {
	ID        uint   `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	Completed bool   `json:"completed"`
}

// ModuleAccessRequest marks a module as the one the student opened last.
type ModuleAccessRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
	ModuleID uint `json:"module_id" validate:"required,gt=0"`
}

// ModuleAccessResponse echoes the recorded access.
type ModuleAccessResponse struct {
	CourseID       uint      `json:"course_id"`
	ModuleID       uint      `json:"module_id"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// CertificateResponse describes a completed course.
type CertificateResponse struct {
	CertificateNumber string     `json:"certificate_number"`
	Course            CourseLite `json:"course"`
	StudentName       string     `json:"student_name"`
	IssuedAt          time.Time  `json:"issued_at"`
}

// CertificateNumber derives a stable certificate identifier for an enrollment.
func CertificateNumber(enrollment models.Enrollment, issuedAt time.Time) string {
	return fmt.Sprintf("LMS-%s-%05d-%05d", issuedAt.UTC().Format("20060102"), enrollment.CourseID, enrollment.StudentID)
}
