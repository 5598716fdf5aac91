package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// ReferralService exposes referral codes and premium unlocks.
type ReferralService interface {
	GetInfo(ctx context.Context, studentID uint) (dto.ReferralInfoResponse, error)
	Apply(ctx context.Context, studentID uint, req dto.ReferralApplyRequest) (dto.ReferralInfoResponse, error)
}

type referralService struct {
	access    courseAccess
	students  repository.StudentRepository
	rewards   rewardLedger
	threshold int
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewReferralService constructs the referral service.
func NewReferralService(deps GamificationDeps) ReferralService {
	logger := deps.Logger.With().Str("component", "referral_service").Logger()
	return &referralService{
		access:    deps.access(),
		students:  deps.Students,
		rewards:   deps.ledger(logger),
		threshold: deps.Policy.normalized().ReferralUnlockThreshold,
		validator: deps.Validator,
		logger:    logger,
	}
}

func (s *referralService) GetInfo(ctx context.Context, studentID uint) (dto.ReferralInfoResponse, error) {
	student, err := s.access.activeStudent(ctx, studentID)
	if err != nil {
		return dto.ReferralInfoResponse{}, err
	}
	return s.info(student), nil
}

// Apply redeems another student's code. Each student may redeem a single code.
func (s *referralService) Apply(ctx context.Context, studentID uint, req dto.ReferralApplyRequest) (dto.ReferralInfoResponse, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Struct(req); err != nil {
		return dto.ReferralInfoResponse{}, err
	}

	student, err := s.access.activeStudent(ctx, studentID)
	if err != nil {
		return dto.ReferralInfoResponse{}, err
	}
	if student.ReferredByID != nil {
		return dto.ReferralInfoResponse{}, ErrReferralAlreadyApplied
	}
	if student.ReferralCode == req.Code {
		return dto.ReferralInfoResponse{}, ErrSelfReferral
	}

	referrer, err := s.students.GetByReferralCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReferralInfoResponse{}, ErrReferralCodeNotFound
		}
		return dto.ReferralInfoResponse{}, wrapInternal("load referrer", err)
	}
	if referrer.ID == student.ID {
		return dto.ReferralInfoResponse{}, ErrSelfReferral
	}

	outcome, err := s.students.ApplyReferral(ctx, student.ID, referrer.ID, s.threshold)
	if err != nil {
		return dto.ReferralInfoResponse{}, wrapInternal("apply referral", err)
	}
	if !outcome.Applied {
		return dto.ReferralInfoResponse{}, ErrReferralAlreadyApplied
	}

	referrerID := referrer.ID
	metadata := map[string]interface{}{
		"referrer_id":       referrer.ID,
		"referrer_unlocked": outcome.ReferrerUnlocked,
	}
	s.rewards.record(ctx, ActivityEntry{
		ActorID:    student.ID,
		ActorRole:  "student",
		Action:     models.ActivityReferralApplied,
		EntityType: "student",
		EntityID:   &referrerID,
		Metadata:   metadata,
	})
	s.rewards.publish(ctx, GamificationEvent{
		Type:       models.ActivityReferralApplied,
		StudentID:  student.ID,
		Attributes: metadata,
	})
	s.rewards.invalidate(ctx, student.ID)
	s.rewards.invalidate(ctx, referrer.ID)

	s.logger.Info().
		Uint("student_id", student.ID).
		Uint("referrer_id", referrer.ID).
		Bool("referrer_unlocked", outcome.ReferrerUnlocked).
		Msg("referral applied")

	updated, err := s.students.GetByID(ctx, student.ID)
	if err != nil {
		return dto.ReferralInfoResponse{}, wrapInternal("reload student", err)
	}
	return s.info(updated), nil
}

func (s *referralService) info(student models.Student) dto.ReferralInfoResponse {
	return dto.ReferralInfoResponse{
		ReferralCode:      student.ReferralCode,
		ReferralCount:     student.ReferralCount,
		RequiredReferrals: s.threshold,
		Remaining:         maxInt(s.threshold-student.ReferralCount, 0),
		IsPremiumUnlocked: student.IsPremiumUnlocked,
		HasAppliedCode:    student.ReferredByID != nil,
	}
}
