package dto

// LeaderboardRequest selects a leaderboard scope and page.
type LeaderboardRequest struct {
	CourseID *uint `query:"course_id" validate:"omitempty,gt=0"`
	Page     int   `query:"page" validate:"omitempty,gte=1"`
	PageSize int   `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// LeaderboardCounters are additive counter deltas applied alongside XP.
type LeaderboardCounters struct {
	QuizzesCompleted     int `json:"quizzes_completed"`
	AssignmentsCompleted int `json:"assignments_completed"`
}

// LeaderboardEntryResponse is one row of a leaderboard.
type LeaderboardEntryResponse struct {
	Rank                 int    `json:"rank"`
	StudentID            uint   `json:"student_id"`
	Name                 string `json:"name"`
	XP                   int    `json:"xp"`
	QuizzesCompleted     int    `json:"quizzes_completed"`
	AssignmentsCompleted int    `json:"assignments_completed"`
	IsCurrentUser        bool   `json:"is_current_user"`
}

// LeaderboardResponse serves one page of a scope plus the requester's own standing.
type LeaderboardResponse struct {
	CourseID    *uint                      `json:"course_id"`
	Leaderboard []LeaderboardEntryResponse `json:"leaderboard"`
	UserRank    *int                       `json:"user_rank"`
	UserEntry   *LeaderboardEntryResponse  `json:"user_entry"`
	Pagination  PaginationMeta             `json:"pagination"`
}
