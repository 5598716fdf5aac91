package repository

import (
	"context"

	"gorm.io/gorm"
)

// Stores exposes the repositories that take part in a reward transaction. Every
// member is bound to the same database transaction.
type Stores struct {
	Students    StudentRepository
	Enrollments EnrollmentRepository
	Submissions SubmissionRepository
	Leaderboard LeaderboardRepository
}

// Transactor runs a unit of work against transaction-bound repositories. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor constructs a Transactor backed by gorm transactions.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Stores{
			Students:    NewStudentRepository(tx),
			Enrollments: NewEnrollmentRepository(tx),
			Submissions: NewSubmissionRepository(tx),
			Leaderboard: NewLeaderboardRepository(tx),
		})
	})
}
