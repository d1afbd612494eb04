package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/internal/utils"
)

// AssignmentHandler wires faculty-course assignment routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.assign)
	router.Delete("", h.remove)
	router.Post("/bulk/courses", h.bulkAssignCourses)
	router.Post("/bulk/faculty", h.bulkAssignFaculty)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	var filter repository.AssignmentFilter

	if facultyID, err := parseQueryUint(c, "faculty_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faculty_id")
	} else if facultyID != 0 {
		filter.FacultyID = &facultyID
	}
	if courseID, err := parseQueryUint(c, "course_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course_id")
	} else if courseID != 0 {
		filter.CourseID = &courseID
	}

	assignments, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Assign(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "faculty assigned to course", assignment)
}

func (h *AssignmentHandler) remove(c *fiber.Ctx) error {
	var payload dto.AssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Remove(c.Context(), actorFromContext(c), payload); err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "faculty removed from course", fiber.Map{
		"faculty_id": payload.FacultyID,
		"course_id":  payload.CourseID,
	})
}

func (h *AssignmentHandler) bulkAssignCourses(c *fiber.Ctx) error {
	var payload dto.BulkAssignCoursesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BulkAssignCoursesToFaculty(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "bulk assignment completed", result)
}

func (h *AssignmentHandler) bulkAssignFaculty(c *fiber.Ctx) error {
	var payload dto.BulkAssignFacultyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BulkAssignFacultyToCourse(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "bulk assignment completed", result)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFacultyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "faculty not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrNotFacultyRole):
		return utils.SendError(c, fiber.StatusBadRequest, "user is not a faculty member")
	case errors.Is(err, service.ErrAlreadyAssigned):
		return utils.SendError(c, fiber.StatusConflict, "faculty is already assigned to this course")
	case errors.Is(err, service.ErrCoursesMissing):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFacultyMissing):
		return utils.SendError(c, fiber.StatusNotFound, "one or more faculty not found or not faculty members")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
