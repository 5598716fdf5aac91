package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// ActivityListRequest pages through a student's activity ledger.
type ActivityListRequest struct {
	Page       int    `query:"page" validate:"omitempty,gte=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
	Action     string `query:"action" validate:"omitempty,oneof=xp.awarded streak.bonus course.completed referral.applied"`
	EarnedOnly bool   `query:"earned_only"`
}

// ActivityResponse exposes an activity ledger entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	XPDelta    int                    `json:"xp_delta"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps paginated activity entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts an activity log model into its DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	metadata := make(map[string]interface{}, len(entry.Metadata))
	for key, value := range entry.Metadata {
		metadata[key] = value
	}

	return ActivityResponse{
		ID:         entry.ID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		XPDelta:    entry.XPDelta,
		Metadata:   metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// NewActivityResponseSlice converts multiple activity entries.
func NewActivityResponseSlice(entries []models.ActivityLog) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewActivityResponse(entry))
	}
	return responses
}
