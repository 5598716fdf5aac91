package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

var errMissingUser = errors.New("missing user context")

func studentIDFromContext(c *fiber.Ctx) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errMissingUser
	}
	return id, nil
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	id, _ := middleware.UserID(c)
	return service.ActivityActor{ID: id, Role: middleware.UserRole(c)}
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationDetails maps each failing field to the tag it violated.
func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// respondError translates service errors into the API error envelope. Unexpected
// errors are logged with the request correlation id and reported as 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrInvalidInput):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		return utils.Fail(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		return utils.Fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrConflict):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	}

	requestLogger := middleware.RequestLogger(c, logger)
	requestLogger.Error().Err(err).Msg(action)
	return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", nil)
}

func unauthorized(c *fiber.Ctx) error {
	return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
}

func invalidPayload(c *fiber.Ctx) error {
	return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
}
