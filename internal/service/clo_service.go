package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
)

// CLO error sentinels.
var (
	ErrCLONotFound     = errors.New("learning outcome not found")
	ErrCLONumberExists = errors.New("learning outcome number already used for this course")
)

// CLOService exposes learning outcome use cases.
type CLOService interface {
	ListByCourse(ctx context.Context, courseID uint) ([]dto.CLOResponse, error)
	Get(ctx context.Context, id uint) (dto.CLOResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.CLOCreateRequest) (dto.CLOResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.CLOUpdateRequest) (dto.CLOResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type cloService struct {
	clos      repository.CLORepository
	courses   repository.CourseRepository
	recorder  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCLOService builds a new learning outcome service.
func NewCLOService(clos repository.CLORepository, courses repository.CourseRepository, recorder ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) CLOService {
	return &cloService{
		clos:      clos,
		courses:   courses,
		recorder:  recorder,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "clo_service").Logger(),
	}
}

func (s *cloService) ListByCourse(ctx context.Context, courseID uint) ([]dto.CLOResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	clos, err := s.clos.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewCLOResponseSlice(clos), nil
}

func (s *cloService) Get(ctx context.Context, id uint) (dto.CLOResponse, error) {
	clo, err := s.clos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CLOResponse{}, ErrCLONotFound
		}
		return dto.CLOResponse{}, err
	}

	return dto.NewCLOResponse(clo), nil
}

func (s *cloService) Create(ctx context.Context, actor Actor, payload dto.CLOCreateRequest) (dto.CLOResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CLOResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CLOResponse{}, ErrCourseNotFound
		}
		return dto.CLOResponse{}, err
	}

	if _, err := s.clos.GetByCourseAndNumber(ctx, payload.CourseID, payload.Number); err == nil {
		return dto.CLOResponse{}, ErrCLONumberExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CLOResponse{}, err
	}

	clo := models.CLO{
		CourseID:    payload.CourseID,
		Number:      payload.Number,
		Description: s.sanitizer.Sanitize(payload.Description),
	}

	if err := s.clos.Create(ctx, &clo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CLOResponse{}, ErrCLONumberExists
		}
		return dto.CLOResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "CLO_CREATE", map[string]interface{}{
		"clo_id":    clo.ID,
		"course_id": clo.CourseID,
		"number":    clo.Number,
	})
	s.logger.Info().Uint("clo_id", clo.ID).Uint("course_id", clo.CourseID).Msg("learning outcome created")

	return dto.NewCLOResponse(clo), nil
}

func (s *cloService) Update(ctx context.Context, actor Actor, id uint, payload dto.CLOUpdateRequest) (dto.CLOResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CLOResponse{}, err
	}

	clo, err := s.clos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CLOResponse{}, ErrCLONotFound
		}
		return dto.CLOResponse{}, err
	}

	if payload.Number != nil && *payload.Number != clo.Number {
		if existing, err := s.clos.GetByCourseAndNumber(ctx, clo.CourseID, *payload.Number); err == nil && existing.ID != id {
			return dto.CLOResponse{}, ErrCLONumberExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CLOResponse{}, err
		}
		clo.Number = *payload.Number
	}

	if payload.Description != nil {
		clo.Description = s.sanitizer.Sanitize(*payload.Description)
	}

	if err := s.clos.Update(ctx, &clo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CLOResponse{}, ErrCLONumberExists
		}
		return dto.CLOResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "CLO_UPDATE", map[string]interface{}{
		"clo_id":    clo.ID,
		"course_id": clo.CourseID,
		"number":    clo.Number,
	})

	return dto.NewCLOResponse(clo), nil
}

func (s *cloService) Delete(ctx context.Context, actor Actor, id uint) error {
	clo, err := s.clos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCLONotFound
		}
		return err
	}

	if err := s.clos.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCLONotFound
		}
		return err
	}

	s.recorder.Record(ctx, actor.ID, "CLO_DELETE", map[string]interface{}{
		"clo_id":    id,
		"course_id": clo.CourseID,
		"number":    clo.Number,
	})
	s.logger.Info().Uint("clo_id", id).Msg("learning outcome deleted")

	return nil
}
