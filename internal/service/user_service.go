package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
)

// User error sentinels.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidRole    = errors.New("invalid role")
	ErrSelfDemotion   = errors.New("admins cannot change their own role")
	ErrUserHasContent = errors.New("user still has content attached")
)

// UserService exposes admin-facing user management.
type UserService interface {
	List(ctx context.Context, filter repository.UserFilter) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type userService struct {
	users     repository.UserRepository
	contents  repository.ContentRepository
	recorder  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds a new user service.
func NewUserService(users repository.UserRepository, contents repository.ContentRepository, recorder ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		contents:  contents,
		recorder:  recorder,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, filter repository.UserFilter) ([]dto.UserResponse, error) {
	if filter.Role != "" && !models.ValidRole(filter.Role) {
		return nil, ErrInvalidRole
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByIDWithCourses(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, actor Actor, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	role := strings.ToUpper(strings.TrimSpace(payload.Role))
	if role == "" {
		role = models.RoleFaculty
	}
	if !models.ValidRole(role) {
		return dto.UserResponse{}, ErrInvalidRole
	}

	if _, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Email:        payload.Email,
		Name:         payload.Name,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "USER_CREATE", map[string]interface{}{
		"target_user_id": user.ID,
		"role":           user.Role,
	})
	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.Email != nil && *payload.Email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, *payload.Email); err == nil && existing.ID != id {
			return dto.UserResponse{}, ErrEmailTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, err
		}
		user.Email = *payload.Email
	}

	if payload.Name != nil {
		user.Name = *payload.Name
	}

	if payload.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*payload.Role))
		if !models.ValidRole(role) {
			return dto.UserResponse{}, ErrInvalidRole
		}
		// An admin removing their own ADMIN role would lock the tenant out.
		if id == actor.ID && user.Role == models.RoleAdmin && role != models.RoleAdmin {
			return dto.UserResponse{}, ErrSelfDemotion
		}
		user.Role = role
	}

	if payload.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.UserResponse{}, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "USER_UPDATE", map[string]interface{}{
		"target_user_id": user.ID,
		"role":           user.Role,
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id uint) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	contents, err := s.contents.ListByFaculty(ctx, id)
	if err != nil {
		return err
	}
	if len(contents) > 0 {
		return ErrUserHasContent
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.recorder.Record(ctx, actor.ID, "USER_DELETE", map[string]interface{}{
		"target_user_id": id,
		"email":          user.Email,
	})
	s.logger.Info().Uint("user_id", id).Msg("user deleted")

	return nil
}
