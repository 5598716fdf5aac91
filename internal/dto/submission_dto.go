package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// SubmissionGradeRequest is used to grade or update a submission.
type SubmissionGradeRequest struct {
	Status   *string  `json:"status" validate:"omitempty,oneof=submitted graded"`
	Grade    *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Feedback *string  `json:"feedback" validate:"omitempty,min=3"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	CourseID  *uint   `query:"course_id"`
	StudentID *uint   `query:"student_id"`
	Type      *string `query:"type" validate:"omitempty,oneof=quiz assignment"`
	Status    *string `query:"status" validate:"omitempty,oneof=submitted graded"`
	Page      int     `query:"page" validate:"omitempty,gte=1"`
	PageSize  int     `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             uint         `json:"id"`
	StudentID      uint         `json:"student_id"`
	CourseID       uint         `json:"course_id"`
	ModuleID       uint         `json:"module_id"`
	LessonID       uint         `json:"lesson_id"`
	Type           string       `json:"type"`
	Status         string       `json:"status"`
	SubmissionLink string       `json:"submission_link,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	Score          *int         `json:"score,omitempty"`
	TotalQuestions int          `json:"total_questions,omitempty"`
	Grade          *float64     `json:"grade"`
	Feedback       string       `json:"feedback"`
	GradedBy       *uint        `json:"graded_by"`
	GradedAt       *time.Time   `json:"graded_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Student        *StudentLite `json:"student,omitempty"`
}

// SubmissionListResponse wraps paginated submissions for graders.
type SubmissionListResponse struct {
	Items      []SubmissionResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:             model.ID,
		StudentID:      model.StudentID,
		CourseID:       model.CourseID,
		ModuleID:       model.ModuleID,
		LessonID:       model.LessonID,
		Type:           model.Type,
		Status:         model.Status,
		SubmissionLink: model.SubmissionLink,
		Notes:          model.Notes,
		Score:          model.Score,
		TotalQuestions: model.TotalQuestions,
		Grade:          model.Grade,
		Feedback:       model.Feedback,
		GradedBy:       model.GradedBy,
		GradedAt:       model.GradedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	if model.Student.ID != 0 {
		response.Student = &StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts multiple submissions into DTOs.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}
