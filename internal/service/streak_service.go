package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// StreakService maintains the daily activity streak of students.
type StreakService interface {
	Update(ctx context.Context, studentID uint) (dto.StreakResponse, error)
}

type streakService struct {
	access  courseAccess
	rewards rewardLedger
	policy  GamificationPolicy
	logger  zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewStreakService constructs the streak service.
func NewStreakService(deps GamificationDeps) StreakService {
	logger := deps.Logger.With().Str("component", "streak_service").Logger()
	return &streakService{
		access:  deps.access(),
		rewards: deps.ledger(logger),
		policy:  deps.Policy.normalized(),
		logger:  logger,
		tracer:  otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/streak"),
		now:     deps.clock(),
	}
}

type streakPlan struct {
	streak int
	bonus  bool
}

// planStreak decides the next streak value for an activity on today. Both days are
// civil dates at UTC midnight. A gap of exactly one day extends the streak, the same
// day (or a last date in the future) keeps it, anything else restarts at 1.
func planStreak(current int, last *time.Time, today time.Time, milestone int) streakPlan {
	if last == nil {
		return streakPlan{streak: 1}
	}

	diff := int(today.Sub(civilDay(last.UTC(), time.UTC)).Hours() / 24)
	switch {
	case diff <= 0:
		if current <= 0 {
			return streakPlan{streak: 1}
		}
		return streakPlan{streak: current}
	case diff == 1:
		next := current + 1
		return streakPlan{streak: next, bonus: milestone > 0 && next%milestone == 0}
	default:
		return streakPlan{streak: 1}
	}
}

// civilDay truncates t to the calendar day it falls on in loc, expressed as UTC midnight.
func civilDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *streakService) Update(ctx context.Context, studentID uint) (dto.StreakResponse, error) {
	ctx, span := s.tracer.Start(ctx, "streak.update", trace.WithAttributes(
		attribute.Int64("streak.student_id", int64(studentID)),
	))
	defer span.End()

	student, err := s.access.activeStudent(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		return dto.StreakResponse{}, err
	}

	today := civilDay(s.now(), s.policy.Timezone)
	plan := planStreak(student.Streak, student.LastStreakDate, today, s.policy.StreakMilestone)

	bonusXP := 0
	if plan.bonus {
		bonusXP = s.policy.StreakBonusXP
	}

	rw := reward{
		studentID:  studentID,
		xp:         bonusXP,
		source:     "streak",
		action:     models.ActivityStreakBonus,
		entityType: "streak",
		metadata:   map[string]interface{}{"streak": plan.streak},
	}

	var scopes []uint
	err = s.rewards.atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		if err := stores.Students.SaveStreak(ctx, studentID, plan.streak, today, bonusXP); err != nil {
			return wrapInternal("save streak", err)
		}
		if !plan.bonus {
			return nil
		}
		var err error
		scopes, err = s.rewards.rank(ctx, stores, rw)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "streak_save_failed")
		return dto.StreakResponse{}, err
	}
	span.SetAttributes(attribute.Int("streak.value", plan.streak), attribute.Bool("streak.bonus", plan.bonus))

	response := dto.StreakResponse{
		Streak:         plan.streak,
		XPEarned:       bonusXP,
		StreakBonus:    plan.bonus,
		LastStreakDate: today,
	}

	if !plan.bonus {
		s.rewards.invalidate(ctx, studentID)
		return response, nil
	}

	s.rewards.announce(ctx, rw, scopes)
	s.logger.Info().Uint("student_id", studentID).Int("streak", plan.streak).Int("xp", bonusXP).Msg("streak milestone reached")
	return response, nil
}
