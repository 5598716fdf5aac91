package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// AccountStatusPending marks a registered account that has not been verified yet.
	AccountStatusPending = "pending"
	// AccountStatusVerified marks an active account.
	AccountStatusVerified = "verified"
	// AccountStatusBlocked marks an account that may no longer earn rewards or submit work.
	AccountStatusBlocked = "blocked"
)

// Student represents a learner together with the aggregate gamification stats.
type Student struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Name                 string     `gorm:"size:255;not null" json:"name"`
	Email                string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	AccountStatus        string     `gorm:"size:32;not null;default:verified" json:"account_status"`
	XP                   int        `gorm:"not null;default:0" json:"xp"`
	Streak               int        `gorm:"not null;default:0" json:"streak"`
	LastStreakDate       *time.Time `json:"last_streak_date"`
	QuizzesCompleted     int        `gorm:"not null;default:0" json:"quizzes_completed"`
	AssignmentsCompleted int        `gorm:"not null;default:0" json:"assignments_completed"`
	ReferralCode         string     `gorm:"size:32;uniqueIndex" json:"referral_code"`
	ReferralCount        int        `gorm:"not null;default:0" json:"referral_count"`
	IsPremiumUnlocked    bool       `gorm:"not null;default:false" json:"is_premium_unlocked"`
	ReferredByID         *uint      `json:"referred_by_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a referral code to new students.
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ReferralCode == "" {
		s.ReferralCode = NewReferralCode()
	}
	if s.AccountStatus == "" {
		s.AccountStatus = AccountStatusVerified
	}
	return nil
}

// IsBlocked reports whether the account has been blocked by an administrator.
func (s Student) IsBlocked() bool {
	return s.AccountStatus == AccountStatusBlocked
}

// NewReferralCode returns a short, upper-case shareable code.
func NewReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "LMS" + strings.ToUpper(raw[:8])
}
