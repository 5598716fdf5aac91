package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// StudentCounters are additive completion counter deltas.
type StudentCounters struct {
	QuizzesCompleted     int
	AssignmentsCompleted int
}

// ReferralOutcome describes the effect of redeeming a referral code.
type ReferralOutcome struct {
	Applied          bool
	ReferrerUnlocked bool
}

// StudentRepository provides access to student records and their gamification counters.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByReferralCode(ctx context.Context, code string) (models.Student, error)
	AwardXP(ctx context.Context, id uint, xp int, counters StudentCounters) error
	SaveStreak(ctx context.Context, id uint, streak int, day time.Time, bonusXP int) error
	ApplyReferral(ctx context.Context, studentID, referrerID uint, threshold int) (ReferralOutcome, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByReferralCode(ctx context.Context, code string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// AwardXP increments XP and completion counters in a single statement.
func (r *studentRepository) AwardXP(ctx context.Context, id uint, xp int, counters StudentCounters) error {
	updates := map[string]interface{}{
		"xp": gorm.Expr("xp + ?", xp),
	}
	if counters.QuizzesCompleted != 0 {
		updates["quizzes_completed"] = gorm.Expr("quizzes_completed + ?", counters.QuizzesCompleted)
	}
	if counters.AssignmentsCompleted != 0 {
		updates["assignments_completed"] = gorm.Expr("assignments_completed + ?", counters.AssignmentsCompleted)
	}

	result := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *studentRepository) SaveStreak(ctx context.Context, id uint, streak int, day time.Time, bonusXP int) error {
	updates := map[string]interface{}{
		"streak":           streak,
		"last_streak_date": day,
	}
	if bonusXP != 0 {
		updates["xp"] = gorm.Expr("xp + ?", bonusXP)
	}

	result := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ApplyReferral links a student to a referrer exactly once. The applicant gets
// premium access immediately; the referrer's count grows and unlocks premium once
// it reaches the threshold.
func (r *studentRepository) ApplyReferral(ctx context.Context, studentID, referrerID uint, threshold int) (ReferralOutcome, error) {
	var outcome ReferralOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Student{}).
			Where("id = ? AND referred_by_id IS NULL", studentID).
			Updates(map[string]interface{}{
				"referred_by_id":      referrerID,
				"is_premium_unlocked": true,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		outcome.Applied = true

		if err := tx.Model(&models.Student{}).
			Where("id = ?", referrerID).
			Update("referral_count", gorm.Expr("referral_count + 1")).Error; err != nil {
			return err
		}

		unlock := tx.Model(&models.Student{}).
			Where("id = ? AND referral_count >= ? AND is_premium_unlocked = ?", referrerID, threshold, false).
			Update("is_premium_unlocked", true)
		if unlock.Error != nil {
			return unlock.Error
		}
		outcome.ReferrerUnlocked = unlock.RowsAffected == 1
		return nil
	})
	if err != nil {
		return ReferralOutcome{}, err
	}

	return outcome, nil
}
