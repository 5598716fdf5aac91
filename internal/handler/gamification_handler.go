package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// GamificationHandler serves streak, leaderboard and referral endpoints.
type GamificationHandler struct {
	streaks     service.StreakService
	leaderboard service.LeaderboardService
	referrals   service.ReferralService
	logger      zerolog.Logger
}

// NewGamificationHandler constructs the handler.
func NewGamificationHandler(streaks service.StreakService, leaderboard service.LeaderboardService, referrals service.ReferralService, logger zerolog.Logger) *GamificationHandler {
	return &GamificationHandler{
		streaks:     streaks,
		leaderboard: leaderboard,
		referrals:   referrals,
		logger:      logger.With().Str("component", "gamification_handler").Logger(),
	}
}

// Register wires gamification routes.
func (h *GamificationHandler) Register(router fiber.Router) {
	router.Post("/streak/update", h.updateStreak)
	router.Get("/leaderboard", h.getLeaderboard)
	router.Get("/referral", h.getReferral)
	router.Post("/referral/apply", h.applyReferral)
}

func (h *GamificationHandler) updateStreak(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	result, err := h.streaks.Update(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update streak")
	}

	message := "streak updated"
	if result.StreakBonus {
		message = "streak milestone reached"
	}

	return utils.OK(c, result, message, nil)
}

func (h *GamificationHandler) getLeaderboard(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.LeaderboardRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", nil)
	}

	result, err := h.leaderboard.Get(c.UserContext(), studentID, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load leaderboard")
	}

	return utils.OK(c, result, "leaderboard retrieved", nil)
}

func (h *GamificationHandler) getReferral(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	info, err := h.referrals.GetInfo(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load referral info")
	}

	return utils.OK(c, info, "referral info retrieved", nil)
}

func (h *GamificationHandler) applyReferral(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ReferralApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	info, err := h.referrals.Apply(c.UserContext(), studentID, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to apply referral code")
	}

	return utils.OK(c, info, "referral code applied", nil)
}
