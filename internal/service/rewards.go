package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// GamificationDeps bundles the collaborators shared by the XP-awarding services.
// Activity, Events and Dashboards are optional. Transactor must be bound to the
// same database as the repositories.
type GamificationDeps struct {
	Transactor  repository.Transactor
	Courses     repository.CourseRepository
	Students    repository.StudentRepository
	Enrollments repository.EnrollmentRepository
	Submissions repository.SubmissionRepository
	Leaderboard LeaderboardService
	Activity    ActivityRecorder
	Events      EventPublisher
	Dashboards  DashboardInvalidator
	Policy      GamificationPolicy
	Validator   *validator.Validate
	Logger      zerolog.Logger
	Now         func() time.Time
}

func (d GamificationDeps) access() courseAccess {
	return courseAccess{courses: d.Courses, students: d.Students, enrollments: d.Enrollments}
}

func (d GamificationDeps) ledger(logger zerolog.Logger) rewardLedger {
	return rewardLedger{
		tx:          d.Transactor,
		leaderboard: d.Leaderboard,
		activity:    d.Activity,
		events:      d.Events,
		dashboards:  d.Dashboards,
		logger:      logger,
	}
}

func (d GamificationDeps) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

// reward describes XP granted to a student for a single event.
type reward struct {
	studentID  uint
	courseID   *uint
	xp         int
	counters   dto.LeaderboardCounters
	source     string
	action     string
	entityType string
	entityID   *uint
	metadata   map[string]interface{}
}

// rewardLedger applies the writes and side effects shared by every XP-earning
// event. Writes go through transaction-bound stores; notifications are only sent
// for committed rewards.
type rewardLedger struct {
	tx          repository.Transactor
	leaderboard LeaderboardService
	activity    ActivityRecorder
	events      EventPublisher
	dashboards  DashboardInvalidator
	logger      zerolog.Logger
}

// atomically runs fn in one database transaction.
func (l rewardLedger) atomically(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	return l.tx.WithinTransaction(ctx, fn)
}

// credit increments the student's XP and counters and the matching leaderboard
// entries. It must run inside the caller's transaction and returns the leaderboard
// scopes it touched.
func (l rewardLedger) credit(ctx context.Context, stores repository.Stores, r reward) ([]uint, error) {
	counters := repository.StudentCounters{
		QuizzesCompleted:     r.counters.QuizzesCompleted,
		AssignmentsCompleted: r.counters.AssignmentsCompleted,
	}
	if err := stores.Students.AwardXP(ctx, r.studentID, r.xp, counters); err != nil {
		return nil, wrapInternal("award xp", err)
	}
	return l.rank(ctx, stores, r)
}

// rank applies the reward to the leaderboards only, for XP that the caller has
// already written to the student row in the same transaction.
func (l rewardLedger) rank(ctx context.Context, stores repository.Stores, r reward) ([]uint, error) {
	return l.leaderboard.Apply(ctx, stores.Leaderboard, r.studentID, r.courseID, r.xp, r.counters)
}

// announce runs after commit. Failures here are logged and never undo the reward.
func (l rewardLedger) announce(ctx context.Context, r reward, scopes []uint) {
	observability.XPAwarded().WithLabelValues(r.source).Add(float64(r.xp))
	l.leaderboard.Invalidate(ctx, scopes...)

	l.record(ctx, ActivityEntry{
		ActorID:    r.studentID,
		ActorRole:  repository.LedgerRoleStudent,
		Action:     r.action,
		EntityType: r.entityType,
		EntityID:   r.entityID,
		XPDelta:    r.xp,
		Metadata:   r.metadata,
	})

	l.publish(ctx, GamificationEvent{
		Type:       r.action,
		StudentID:  r.studentID,
		CourseID:   r.courseID,
		XP:         r.xp,
		Attributes: r.metadata,
	})

	l.invalidate(ctx, r.studentID)
}

func (l rewardLedger) courseCompleted(ctx context.Context, studentID uint, course models.Course) {
	courseID := course.ID
	metadata := map[string]interface{}{"course_title": course.Title, "course_slug": course.Slug}

	l.record(ctx, ActivityEntry{
		ActorID:    studentID,
		ActorRole:  repository.LedgerRoleStudent,
		Action:     models.ActivityCourseCompleted,
		EntityType: "course",
		EntityID:   &courseID,
		Metadata:   metadata,
	})
	l.publish(ctx, GamificationEvent{
		Type:       models.ActivityCourseCompleted,
		StudentID:  studentID,
		CourseID:   &courseID,
		Attributes: metadata,
	})
	l.invalidate(ctx, studentID)
}

func (l rewardLedger) record(ctx context.Context, entry ActivityEntry) {
	if l.activity == nil {
		return
	}
	if _, err := l.activity.Record(ctx, entry); err != nil {
		l.logger.Warn().Err(err).Str("action", entry.Action).Uint("student_id", entry.ActorID).Msg("failed to record activity")
	}
}

func (l rewardLedger) publish(ctx context.Context, event GamificationEvent) {
	if l.events == nil {
		return
	}
	l.events.Publish(ctx, event)
}

func (l rewardLedger) invalidate(ctx context.Context, studentID uint) {
	if l.dashboards == nil {
		return
	}
	l.dashboards.Invalidate(ctx, studentID)
}
