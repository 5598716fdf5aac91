package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// AdminGradingHandler wires grading endpoints for admins and teachers.
type AdminGradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewAdminGradingHandler constructs the handler.
func NewAdminGradingHandler(service service.GradingService, logger zerolog.Logger) *AdminGradingHandler {
	return &AdminGradingHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group.
func (h *AdminGradingHandler) Register(router fiber.Router) {
	router.Get("/submissions", h.list)
	router.Patch("/submissions/:id", h.grade)
}

func (h *AdminGradingHandler) list(c *fiber.Ctx) error {
	var filter dto.SubmissionFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", nil)
	}

	result, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list submissions")
	}

	return utils.OK(c, result.Items, "submissions retrieved", result.Pagination)
}

func (h *AdminGradingHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
	}

	var payload dto.SubmissionGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	submission, err := h.service.Grade(c.UserContext(), activityActorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to grade submission")
	}

	return utils.OK(c, submission, "submission graded", nil)
}
