package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// AssignmentSubmitRequest is the payload for submitting a task.
type AssignmentSubmitRequest struct {
	CourseID       uint   `json:"course_id" validate:"required,gt=0"`
	ModuleID       uint   `json:"module_id" validate:"required,gt=0"`
	TaskID         uint   `json:"task_id" validate:"required,gt=0"`
	SubmissionLink string `json:"submission_link" validate:"required,url,max=512"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
}

// AssignmentSubmitResponse wraps the stored submission with reward details.
type AssignmentSubmitResponse struct {
	Submission         SubmissionResponse `json:"submission"`
	FirstSubmission    bool               `json:"first_submission"`
	XPEarned           int                `json:"xp_earned"`
	ProgressPercentage int                `json:"progress_percentage"`
	CourseCompleted    bool               `json:"course_completed"`
	Message            string             `json:"-"`
}

// CourseAssignmentOverview summarizes assignment progress for one enrolled course.
type CourseAssignmentOverview struct {
	CourseID             uint   `json:"course_id"`
	CourseTitle          string `json:"course_title"`
	CourseSlug           string `json:"course_slug"`
	Thumbnail            string `json:"thumbnail"`
	TotalAssignments     int    `json:"total_assignments"`
	CompletedAssignments int    `json:"completed_assignments"`
	Progress             int    `json:"progress"`
}

// CourseAssignmentItem describes a task and the student's submission for it.
type CourseAssignmentItem struct {
	TaskID         uint       `json:"task_id"`
	ModuleID       uint       `json:"module_id"`
	ModuleTitle    string     `json:"module_title"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	IsCompleted    bool       `json:"is_completed"`
	SubmissionID   *uint      `json:"submission_id"`
	SubmissionLink string     `json:"submission_link"`
	Grade          *float64   `json:"grade"`
	Feedback       string     `json:"feedback"`
	SubmittedAt    *time.Time `json:"submitted_at"`
}

// CourseAssignmentsResponse lists the tasks of a course for a student.
type CourseAssignmentsResponse struct {
	Course      CourseLite             `json:"course"`
	Assignments []CourseAssignmentItem `json:"assignments"`
}

// AssignmentStatusPending marks tasks without a submission.
const AssignmentStatusPending = "pending"

// NewCourseAssignmentItem merges a task with an optional submission.
func NewCourseAssignmentItem(module models.Module, task models.Task, completed bool, submission *models.Submission) CourseAssignmentItem {
	item := CourseAssignmentItem{
		TaskID:      task.ID,
		ModuleID:    module.ID,
		ModuleTitle: module.Title,
		Title:       task.Title,
		Description: task.Description,
		Status:      AssignmentStatusPending,
		IsCompleted: completed,
	}
	if submission == nil {
		return item
	}

	id := submission.ID
	submittedAt := submission.UpdatedAt
	item.Status = submission.Status
	item.SubmissionID = &id
	item.SubmissionLink = submission.SubmissionLink
	item.Grade = submission.Grade
	item.Feedback = submission.Feedback
	item.SubmittedAt = &submittedAt
	return item
}
