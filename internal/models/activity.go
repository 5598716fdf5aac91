package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// ActivityXPAwarded records XP granted for a first submission.
	ActivityXPAwarded = "xp.awarded"
	// ActivityStreakBonus records a streak milestone bonus.
	ActivityStreakBonus = "streak.bonus"
	// ActivityCourseCompleted records a course reaching 100% progress.
	ActivityCourseCompleted = "course.completed"
	// ActivityReferralApplied records a referral code redemption.
	ActivityReferralApplied = "referral.applied"
	// ActivitySubmissionGraded records a grader evaluating a submission.
	ActivitySubmissionGraded = "submission.graded"
)

// ActivityLog captures gamification events for a student, and grading actions by staff.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	XPDelta    int               `gorm:"not null;default:0" json:"xp_delta"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
