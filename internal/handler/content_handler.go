package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/internal/utils"
	"github.com/acadex/acadex-api/pkg/ai"
)

// ContentHandler wires assessable content routes.
type ContentHandler struct {
	service service.ContentService
	logger  zerolog.Logger
}

// NewContentHandler constructs the handler.
func NewContentHandler(service service.ContentService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register attaches content endpoints to the router group.
func (h *ContentHandler) Register(router fiber.Router) {
	router.Get("", h.listMine)
	router.Post("", h.create)
	router.Post("/generate/ai", h.generate)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/questions", h.addQuestion)
	router.Delete("/:id/questions/:index", h.removeQuestion)
}

func (h *ContentHandler) listMine(c *fiber.Ctx) error {
	actor := actorFromContext(c)

	facultyID := actor.ID
	if actor.IsAdmin() {
		if queried, err := parseQueryUint(c, "faculty_id"); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid faculty_id")
		} else if queried != 0 {
			facultyID = queried
		}
	}

	contents, err := h.service.ListByFaculty(c.Context(), facultyID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "content retrieved", contents)
}

func (h *ContentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	content, err := h.service.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "content retrieved", content)
}

func (h *ContentHandler) create(c *fiber.Ctx) error {
	var payload dto.ContentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	content, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "content created", content)
}

func (h *ContentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	content, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "content updated", content)
}

func (h *ContentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "content deleted", fiber.Map{"id": id})
}

func (h *ContentHandler) addQuestion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionAddRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	content, err := h.service.AddQuestion(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question added", content)
}

func (h *ContentHandler) removeQuestion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question index")
	}

	content, err := h.service.RemoveQuestion(c.Context(), actorFromContext(c), id, index)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question removed", content)
}

func (h *ContentHandler) generate(c *fiber.Ctx) error {
	var payload dto.GenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	questions, err := h.service.GeneratePreview(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions generated", fiber.Map{"questions": questions})
}

func (h *ContentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "content not found")
	case errors.Is(err, service.ErrContentForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "content belongs to another faculty member")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrCourseNotAssigned):
		return utils.SendError(c, fiber.StatusForbidden, "faculty is not assigned to this course")
	case errors.Is(err, service.ErrInvalidContentType):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid content type")
	case errors.Is(err, service.ErrInvalidQuestions):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrQuestionIndex):
		return utils.SendError(c, fiber.StatusBadRequest, "question index out of range")
	case errors.Is(err, ai.ErrGenerationFailed):
		return utils.SendError(c, fiber.StatusBadGateway, "content generation failed")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *ContentHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
