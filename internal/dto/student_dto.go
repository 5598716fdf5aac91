package dto

import "time"

// StudentDashboardResponse aggregates gamification stats for a student.
type StudentDashboardResponse struct {
	Student        StudentStats       `json:"student"`
	Summary        CourseSummary      `json:"summary"`
	Courses        []CourseProgress   `json:"courses"`
	RecentActivity []ActivityResponse `json:"recent_activity"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// StudentStats captures the aggregate counters of a student.
type StudentStats struct {
	ID                   uint       `json:"id"`
	Name                 string     `json:"name"`
	XP                   int        `json:"xp"`
	Streak               int        `json:"streak"`
	LastStreakDate       *time.Time `json:"last_streak_date"`
	QuizzesCompleted     int        `json:"quizzes_completed"`
	AssignmentsCompleted int        `json:"assignments_completed"`
	XPLast7Days          int        `json:"xp_last_7_days"`
	GlobalRank           *int       `json:"global_rank"`
	IsPremiumUnlocked    bool       `json:"is_premium_unlocked"`
}

// CourseSummary captures aggregated enrollment statistics for the dashboard.
type CourseSummary struct {
	EnrolledCourses  int `json:"enrolled_courses"`
	CompletedCourses int `json:"completed_courses"`
	AverageProgress  int `json:"average_progress"`
}

// StreakResponse reports the outcome of a streak update.
type StreakResponse struct {
	Streak         int       `json:"streak"`
	XPEarned       int       `json:"xp_earned"`
	StreakBonus    bool      `json:"streak_bonus"`
	LastStreakDate time.Time `json:"last_streak_date"`
}
