package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/internal/utils"
)

// UserHandler wires user management and activity log routes.
type UserHandler struct {
	users    service.UserService
	activity service.ActivityService
	courses  service.CourseService
	logger   zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users service.UserService, activity service.ActivityService, courses service.CourseService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		activity: activity,
		courses:  courses,
		logger:   logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches the admin-only user endpoints to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/courses", h.listCourses)
}

// RegisterActivity attaches the activity endpoint. It stays outside the
// admin guard because users may read their own trail.
func (h *UserHandler) RegisterActivity(router fiber.Router) {
	router.Get("/:id/activity", h.listActivity)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	filter := repository.UserFilter{Role: strings.ToUpper(strings.TrimSpace(c.Query("role")))}

	users, err := h.users.List(c.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid role filter")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.users.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "user created", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.users.Delete(c.Context(), actorFromContext(c), id); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrUserHasContent):
			return utils.SendError(c, fiber.StatusConflict, "user still has content attached")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "user deleted", fiber.Map{"id": id})
}

func (h *UserHandler) listCourses(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	courses, err := h.courses.ListByFaculty(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFacultyNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

// listActivity returns the audit trail for a user. Admins may read anyone's
// trail; everyone else only their own.
func (h *UserHandler) listActivity(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if actor.Role != models.RoleAdmin && actor.ID != id {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if pageSize == 0 {
		// page_size is kept as an alias for older clients.
		pageSize, err = parseQueryInt(c, "page_size")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
		}
	}

	activity, err := h.activity.ListByUser(c.Context(), dto.ActivityListRequest{
		UserID:   id,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "activity retrieved", activity)
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email already in use")
	case errors.Is(err, service.ErrInvalidRole):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid role")
	case errors.Is(err, service.ErrSelfDemotion):
		return utils.SendError(c, fiber.StatusConflict, "admins cannot change their own role")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *UserHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
