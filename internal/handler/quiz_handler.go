package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// QuizHandler serves quiz listing, detail and submission.
type QuizHandler struct {
	service service.QuizService
	logger  zerolog.Logger
}

// NewQuizHandler constructs a quiz handler.
func NewQuizHandler(service service.QuizService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register wires quiz routes.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("/quizzes", h.overview)
	router.Get("/courses/:slug/quizzes", h.list)
	router.Get("/courses/:slug/quizzes/:quizId", h.detail)
	router.Post("/quizzes/submit", h.submit)
}

func (h *QuizHandler) overview(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	overview, err := h.service.Overview(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load quiz overview")
	}

	return utils.OK(c, overview, "quiz overview retrieved", nil)
}

func (h *QuizHandler) list(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	quizzes, err := h.service.ListCourseQuizzes(c.UserContext(), studentID, c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list quizzes")
	}

	return utils.OK(c, quizzes, "quizzes retrieved", nil)
}

func (h *QuizHandler) detail(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	quiz, err := h.service.GetQuiz(c.UserContext(), studentID, c.Params("slug"), quizID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load quiz")
	}

	return utils.OK(c, quiz, "quiz retrieved", nil)
}

func (h *QuizHandler) submit(c *fiber.Ctx) error {
	studentID, err := studentIDFromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.QuizSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.Submit(c.UserContext(), studentID, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit quiz")
	}

	message := "Quiz submitted successfully"
	if !result.FirstSubmission {
		message = "Quiz resubmitted successfully"
	}

	return utils.OK(c, result, message, nil)
}
