package models

import (
	"sort"
	"time"
)

// GlobalLeaderboardScope is the CourseID used for the platform-wide leaderboard.
const GlobalLeaderboardScope uint = 0

// LeaderboardEntry stores a student's standing within one leaderboard scope.
type LeaderboardEntry struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	StudentID            uint      `gorm:"not null;uniqueIndex:idx_leaderboard_student_scope" json:"student_id"`
	CourseID             uint      `gorm:"not null;default:0;uniqueIndex:idx_leaderboard_student_scope;index" json:"course_id"`
	XP                   int       `gorm:"not null;default:0" json:"xp"`
	QuizzesCompleted     int       `gorm:"not null;default:0" json:"quizzes_completed"`
	AssignmentsCompleted int       `gorm:"not null;default:0" json:"assignments_completed"`
	Rank                 int       `gorm:"not null;default:0" json:"rank"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	Student              Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsGlobal reports whether the entry belongs to the platform-wide leaderboard.
func (e LeaderboardEntry) IsGlobal() bool {
	return e.CourseID == GlobalLeaderboardScope
}

// RankLeaderboard orders entries of a single scope by XP descending and assigns
// dense positional ranks starting at 1. Students with equal XP keep their previous
// relative order; entries without a previous rank go after ranked ones, then by ID.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	ranked := make([]LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		if a.Rank != b.Rank {
			if a.Rank == 0 {
				return false
			}
			if b.Rank == 0 {
				return true
			}
			return a.Rank < b.Rank
		}
		return a.ID < b.ID
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
