package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// LedgerRoleStudent is the actor role of entries that belong to a student's own ledger.
const LedgerRoleStudent = "student"

// ActivityLogFilter narrows ledger queries. StudentID selects a student's own
// ledger (entries recorded with the student role); ActorID matches any actor,
// graders included. EarnedOnly keeps entries that moved XP.
type ActivityLogFilter struct {
	StudentID  *uint
	ActorID    *uint
	Action     string
	EarnedOnly bool
	Since      *time.Time
	Page       int
	PageSize   int
}

// ActivityLogRepository persists the gamification ledger.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	SumXP(ctx context.Context, studentID uint, since time.Time) (int, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the ledger repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Scopes(ledgerScope(filter))

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// SumXP totals the XP a student earned from ledger entries created at or after since.
func (r *activityLogRepository) SumXP(ctx context.Context, studentID uint, since time.Time) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Scopes(ledgerScope(ActivityLogFilter{StudentID: &studentID, Since: &since})).
		Select("COALESCE(SUM(xp_delta), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return int(total), nil
}

func ledgerScope(filter ActivityLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.StudentID != nil {
			db = db.Where("actor_id = ? AND actor_role = ?", *filter.StudentID, LedgerRoleStudent)
		}
		if filter.ActorID != nil {
			db = db.Where("actor_id = ?", *filter.ActorID)
		}
		if filter.Action != "" {
			db = db.Where("action = ?", filter.Action)
		}
		if filter.EarnedOnly {
			db = db.Where("xp_delta <> 0")
		}
		if filter.Since != nil {
			db = db.Where("created_at >= ?", filter.Since.UTC())
		}
		return db
	}
}
