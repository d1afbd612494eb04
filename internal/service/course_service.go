package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
)

// Course error sentinels.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseCodeExists   = errors.New("course code already exists")
	ErrCourseHasContent   = errors.New("course still has content attached")
	ErrFacultyNotFound    = errors.New("faculty not found")
	ErrNotFacultyRole     = errors.New("user is not a faculty member")
	ErrDuplicateCLONumber = errors.New("duplicate clo number")
)

const courseListCacheKey = "courses:all"

// CourseService exposes course catalog use cases.
type CourseService interface {
	List(ctx context.Context, filter repository.CourseFilter) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	ListByFaculty(ctx context.Context, facultyID uint) ([]dto.CourseResponse, error)
}

type courseService struct {
	courses     repository.CourseRepository
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	contents    repository.ContentRepository
	recorder    ActivityRecorder
	validator   *validator.Validate
	cache       *redis.Client
	cacheTTL    time.Duration
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewCourseService builds a new course service.
func NewCourseService(
	courses repository.CourseRepository,
	users repository.UserRepository,
	assignments repository.AssignmentRepository,
	contents repository.ContentRepository,
	recorder ActivityRecorder,
	validate *validator.Validate,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) CourseService {
	return &courseService{
		courses:     courses,
		users:       users,
		assignments: assignments,
		contents:    contents,
		recorder:    recorder,
		validator:   validate,
		cache:       cache,
		cacheTTL:    cacheTTL,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, filter repository.CourseFilter) ([]dto.CourseResponse, error) {
	cacheable := filter.Code == "" && filter.Name == ""

	if cacheable && s.cache != nil {
		if cached, err := s.cache.Get(ctx, courseListCacheKey).Result(); err == nil {
			var responses []dto.CourseResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read course list cache")
		}
	}

	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := dto.NewCourseResponseSlice(courses)

	if cacheable && s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, courseListCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store course list cache")
			}
		}
	}

	return responses, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	if _, err := s.courses.GetByCode(ctx, payload.Code); err == nil {
		return dto.CourseResponse{}, ErrCourseCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CourseResponse{}, err
	}

	clos, err := buildSeedCLOs(payload.CLOs, s.sanitizer)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	creditHours := payload.CreditHours
	if creditHours == 0 {
		creditHours = 3
	}

	course := models.Course{
		Name:        s.sanitizer.Sanitize(payload.Name),
		Code:        payload.Code,
		Description: s.sanitizer.Sanitize(payload.Description),
		CreditHours: creditHours,
		CLOs:        clos,
	}

	var assignment *models.FacultyCourseAssignment
	if payload.FacultyID != nil {
		if err := s.requireFaculty(ctx, *payload.FacultyID); err != nil {
			return dto.CourseResponse{}, err
		}
		assignment = &models.FacultyCourseAssignment{FacultyID: *payload.FacultyID}
	}

	if err := s.courses.CreateBundle(ctx, &course, assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CourseResponse{}, ErrCourseCodeExists
		}
		return dto.CourseResponse{}, err
	}

	s.invalidateCache(ctx)
	s.recorder.Record(ctx, actor.ID, "COURSE_CREATE", map[string]interface{}{
		"course_id": course.ID,
		"code":      course.Code,
		"clo_count": len(course.CLOs),
	})
	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Msg("course created")

	created, err := s.courses.GetByID(ctx, course.ID)
	if err != nil {
		return dto.NewCourseResponse(course), nil
	}

	return dto.NewCourseResponse(created), nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if payload.Code != nil && *payload.Code != course.Code {
		if existing, err := s.courses.GetByCode(ctx, *payload.Code); err == nil && existing.ID != id {
			return dto.CourseResponse{}, ErrCourseCodeExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, err
		}
		course.Code = *payload.Code
	}

	if payload.Name != nil {
		course.Name = s.sanitizer.Sanitize(*payload.Name)
	}
	if payload.Description != nil {
		course.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.CreditHours != nil {
		course.CreditHours = *payload.CreditHours
	}

	// Save only the course row; associations are managed by their own components.
	update := course
	update.CLOs = nil
	update.FacultyLinks = nil
	update.Contents = nil
	if err := s.courses.Update(ctx, &update); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CourseResponse{}, ErrCourseCodeExists
		}
		return dto.CourseResponse{}, err
	}

	if payload.FacultyID != nil {
		if err := s.linkFaculty(ctx, *payload.FacultyID, id); err != nil {
			return dto.CourseResponse{}, err
		}
	}

	s.invalidateCache(ctx)
	s.recorder.Record(ctx, actor.ID, "COURSE_UPDATE", map[string]interface{}{
		"course_id": id,
		"code":      course.Code,
	})
	s.logger.Info().Uint("course_id", id).Msg("course updated")

	updated, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(updated), nil
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uint) error {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	count, err := s.contents.CountByCourse(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCourseHasContent
	}

	if err := s.courses.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.invalidateCache(ctx)
	s.recorder.Record(ctx, actor.ID, "COURSE_DELETE", map[string]interface{}{
		"course_id": id,
		"code":      course.Code,
	})
	s.logger.Info().Uint("course_id", id).Str("code", course.Code).Msg("course deleted")

	return nil
}

func (s *courseService) ListByFaculty(ctx context.Context, facultyID uint) ([]dto.CourseResponse, error) {
	if _, err := s.users.GetByID(ctx, facultyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}

	courses, err := s.courses.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) requireFaculty(ctx context.Context, facultyID uint) error {
	faculty, err := s.users.GetByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacultyNotFound
		}
		return err
	}
	if !faculty.IsFaculty() {
		return ErrNotFacultyRole
	}
	return nil
}

// linkFaculty attaches the faculty member to the course, skipping silently if
// the pair already exists.
func (s *courseService) linkFaculty(ctx context.Context, facultyID, courseID uint) error {
	if err := s.requireFaculty(ctx, facultyID); err != nil {
		return err
	}

	if _, err := s.assignments.GetByPair(ctx, facultyID, courseID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	assignment := models.FacultyCourseAssignment{FacultyID: facultyID, CourseID: courseID}
	if err := s.assignments.Create(ctx, &assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	return nil
}

func (s *courseService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, courseListCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate course list cache")
	}
}

func buildSeedCLOs(seeds []dto.CLOSeed, sanitizer *bluemonday.Policy) ([]models.CLO, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	clos := make([]models.CLO, 0, len(seeds))
	used := make(map[int]struct{}, len(seeds))
	for i, seed := range seeds {
		number := seed.Number
		if number == 0 {
			number = i + 1
		}
		if _, taken := used[number]; taken {
			return nil, fmt.Errorf("%w: number %d", ErrDuplicateCLONumber, number)
		}
		used[number] = struct{}{}

		clos = append(clos, models.CLO{
			Number:      number,
			Description: sanitizer.Sanitize(seed.Description),
		})
	}

	return clos, nil
}
