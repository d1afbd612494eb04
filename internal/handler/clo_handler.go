package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/internal/utils"
)

// CLOHandler wires learning outcome routes.
type CLOHandler struct {
	service service.CLOService
	logger  zerolog.Logger
}

// NewCLOHandler constructs the handler.
func NewCLOHandler(service service.CLOService, logger zerolog.Logger) *CLOHandler {
	return &CLOHandler{
		service: service,
		logger:  logger.With().Str("component", "clo_handler").Logger(),
	}
}

// Register attaches learning outcome endpoints to the router group.
func (h *CLOHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CLOHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	clo, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCLONotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "learning outcome not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learning outcome retrieved", clo)
}

func (h *CLOHandler) create(c *fiber.Ctx) error {
	var payload dto.CLOCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	clo, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "learning outcome created", clo)
}

func (h *CLOHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CLOUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	clo, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "learning outcome updated", clo)
}

func (h *CLOHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrCLONotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "learning outcome not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "learning outcome deleted", fiber.Map{"id": id})
}

func (h *CLOHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCLONotFound):
		return utils.SendError(c, fiber.StatusNotFound, "learning outcome not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCLONumberExists):
		return utils.SendError(c, fiber.StatusConflict, "learning outcome number already used for this course")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *CLOHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
