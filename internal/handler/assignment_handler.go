package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// AssignmentHandler exposes assignment endpoints for students.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs a new handler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register wires the assignment routes.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/assignments", h.overview)
	router.Get("/courses/:slug/assignments", h.listForCourse)
	router.Post("/assignments/submit", h.submit)
}

func (h *AssignmentHandler) overview(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.service.Overview(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load assignment overview")
	}

	return utils.OK(c, items, "assignments retrieved", nil)
}

func (h *AssignmentHandler) listForCourse(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	result, err := h.service.ListCourseAssignments(c.UserContext(), studentID, c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list course assignments")
	}

	return utils.OK(c, result, "assignments retrieved", nil)
}

func (h *AssignmentHandler) submit(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.AssignmentSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.Submit(c.UserContext(), studentID, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit assignment")
	}

	return utils.OK(c, result, result.Message, nil)
}
