package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// HeaderSeedToken carries the shared secret guarding the seed endpoint.
const HeaderSeedToken = "X-Seed-Token"

// SeedHandler exposes tooling endpoints for seeding the course catalog.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/catalog", h.catalog)
}

func (h *SeedHandler) catalog(c *fiber.Ctx) error {
	token := c.Get(HeaderSeedToken)
	var payload dto.SeedCatalogRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.SeedCatalog(c.UserContext(), token, payload)
	if err != nil {
		return respondError(c, h.logger, err, "seed operation failed")
	}

	return utils.OK(c, result, "catalog seeded", nil)
}
