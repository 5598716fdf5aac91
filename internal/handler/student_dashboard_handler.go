package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// StudentDashboardHandler exposes the student dashboard and activity feed.
type StudentDashboardHandler struct {
	dashboard service.StudentDashboardService
	activity  service.ActivityService
	logger    zerolog.Logger
}

// NewStudentDashboardHandler creates a new handler instance.
func NewStudentDashboardHandler(dashboard service.StudentDashboardService, activity service.ActivityService, logger zerolog.Logger) *StudentDashboardHandler {
	return &StudentDashboardHandler{
		dashboard: dashboard,
		activity:  activity,
		logger:    logger.With().Str("component", "student_dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoints.
func (h *StudentDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
	router.Get("/activity", h.listActivity)
}

func (h *StudentDashboardHandler) getDashboard(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	dashboard, err := h.dashboard.GetDashboard(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}

	return utils.OK(c, dashboard, "dashboard retrieved", nil)
}

func (h *StudentDashboardHandler) listActivity(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ActivityListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", nil)
	}

	result, err := h.activity.ListForStudent(c.UserContext(), studentID, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list activity")
	}

	return utils.OK(c, result.Items, "activity retrieved", result.Pagination)
}
