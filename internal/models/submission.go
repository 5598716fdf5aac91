package models

import "time"

// Submission is a student's attempt record for one quiz or assignment lesson.
// There is at most one row per (student, course, lesson, type); resubmissions overwrite it.
type Submission struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	EnrollmentID   uint       `gorm:"not null;index" json:"enrollment_id"`
	StudentID      uint       `gorm:"not null;uniqueIndex:idx_submission_lesson" json:"student_id"`
	CourseID       uint       `gorm:"not null;uniqueIndex:idx_submission_lesson" json:"course_id"`
	ModuleID       uint       `gorm:"not null" json:"module_id"`
	LessonID       uint       `gorm:"not null;uniqueIndex:idx_submission_lesson" json:"lesson_id"`
	Type           string     `gorm:"size:16;not null;uniqueIndex:idx_submission_lesson" json:"type"`
	Status         string     `gorm:"size:32;not null" json:"status"`
	SubmissionLink string     `gorm:"size:512" json:"submission_link"`
	Notes          string     `gorm:"type:text" json:"notes"`
	Score          *int       `json:"score"`
	TotalQuestions int        `gorm:"not null;default:0" json:"total_questions"`
	Answers        []byte     `gorm:"type:json" json:"-"`
	Grade          *float64   `json:"grade"`
	Feedback       string     `gorm:"type:text" json:"feedback"`
	GradedBy       *uint      `json:"graded_by"`
	GradedAt       *time.Time `json:"graded_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Student        Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course         Course     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// SubmissionTypeQuiz marks a quiz attempt.
	SubmissionTypeQuiz = "quiz"
	// SubmissionTypeAssignment marks an assignment submission.
	SubmissionTypeAssignment = "assignment"
)

const (
	// SubmissionStatusSubmitted indicates the submission has been received but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
)

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
