package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// LeaderboardDelta holds additive changes for one leaderboard entry.
type LeaderboardDelta struct {
	XP                   int
	QuizzesCompleted     int
	AssignmentsCompleted int
}

// LeaderboardRepository persists ranked leaderboard entries per scope.
type LeaderboardRepository interface {
	ApplyDelta(ctx context.Context, studentID, courseID uint, delta LeaderboardDelta) error
	Rerank(ctx context.Context, courseID uint) error
	ListScopes(ctx context.Context) ([]uint, error)
	Page(ctx context.Context, courseID uint, page, pageSize int) ([]models.LeaderboardEntry, int64, error)
	GetEntry(ctx context.Context, studentID, courseID uint) (models.LeaderboardEntry, error)
}

type leaderboardRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLeaderboardRepository constructs a leaderboard repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db, now: time.Now}
}

// ApplyDelta creates or increments the student's entry in a scope and re-ranks
// the whole scope in the same transaction.
func (r *leaderboardRepository) ApplyDelta(ctx context.Context, studentID, courseID uint, delta LeaderboardDelta) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.LeaderboardEntry{
			StudentID:            studentID,
			CourseID:             courseID,
			XP:                   delta.XP,
			QuizzesCompleted:     delta.QuizzesCompleted,
			AssignmentsCompleted: delta.AssignmentsCompleted,
		}

		if err := tx.Omit("Student").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"xp":                    gorm.Expr("leaderboard_entries.xp + ?", delta.XP),
				"quizzes_completed":     gorm.Expr("leaderboard_entries.quizzes_completed + ?", delta.QuizzesCompleted),
				"assignments_completed": gorm.Expr("leaderboard_entries.assignments_completed + ?", delta.AssignmentsCompleted),
				"updated_at":            r.now().UTC(),
			}),
		}).Create(&entry).Error; err != nil {
			return err
		}

		return rerankScope(tx, courseID)
	})
}

func (r *leaderboardRepository) Rerank(ctx context.Context, courseID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return rerankScope(tx, courseID)
	})
}

func rerankScope(tx *gorm.DB, courseID uint) error {
	var entries []models.LeaderboardEntry
	if err := tx.Where("course_id = ?", courseID).Find(&entries).Error; err != nil {
		return err
	}

	previous := make(map[uint]int, len(entries))
	for _, entry := range entries {
		previous[entry.ID] = entry.Rank
	}

	for _, entry := range models.RankLeaderboard(entries) {
		if previous[entry.ID] == entry.Rank {
			continue
		}
		if err := tx.Model(&models.LeaderboardEntry{}).
			Where("id = ?", entry.ID).
			UpdateColumn("rank", entry.Rank).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *leaderboardRepository) ListScopes(ctx context.Context) ([]uint, error) {
	var scopes []uint
	if err := r.db.WithContext(ctx).
		Model(&models.LeaderboardEntry{}).
		Distinct().
		Order("course_id ASC").
		Pluck("course_id", &scopes).Error; err != nil {
		return nil, err
	}

	return scopes, nil
}

func (r *leaderboardRepository) Page(ctx context.Context, courseID uint, page, pageSize int) ([]models.LeaderboardEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LeaderboardEntry{}).Where("course_id = ?", courseID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}

	var entries []models.LeaderboardEntry
	if err := query.
		Preload("Student").
		Order("rank ASC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *leaderboardRepository) GetEntry(ctx context.Context, studentID, courseID uint) (models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&entry).Error; err != nil {
		return models.LeaderboardEntry{}, err
	}

	return entry, nil
}
