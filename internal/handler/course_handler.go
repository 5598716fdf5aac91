package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// CourseHandler exposes enrolled courses, module access, progress and certificates.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course routes.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/courses", h.list)
	router.Get("/courses/:slug", h.detail)
	router.Get("/courses/:slug/modules", h.modules)
	router.Get("/courses/:slug/progress", h.progress)
	router.Post("/modules/access", h.markAccessed)
	router.Get("/certificates", h.certificates)
	router.Get("/certificates/:courseSlug", h.certificate)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	courses, err := h.service.ListMyCourses(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list courses")
	}

	return utils.OK(c, courses, "courses retrieved", nil)
}

func (h *CourseHandler) detail(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	course, err := h.service.GetCourse(c.UserContext(), studentID, c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load course")
	}

	return utils.OK(c, course, "course retrieved", nil)
}

func (h *CourseHandler) modules(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	modules, err := h.service.ListModules(c.UserContext(), studentID, c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list modules")
	}

	return utils.OK(c, modules, "modules retrieved", nil)
}

func (h *CourseHandler) markAccessed(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ModuleAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	access, err := h.service.MarkModuleAccessed(c.UserContext(), studentID, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to record module access")
	}

	return utils.OK(c, access, "module access recorded", nil)
}

func (h *CourseHandler) progress(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	detail, err := h.service.GetProgress(c.UserContext(), studentID, c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load course progress")
	}

	return utils.OK(c, detail, "progress retrieved", nil)
}

func (h *CourseHandler) certificates(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	certificates, err := h.service.ListCertificates(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list certificates")
	}

	return utils.OK(c, certificates, "certificates retrieved", nil)
}

func (h *CourseHandler) certificate(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	certificate, err := h.service.GetCertificate(c.UserContext(), studentID, c.Params("courseSlug"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load certificate")
	}

	return utils.OK(c, certificate, "certificate retrieved", nil)
}
