package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/pkg/ai"
)

// Content error sentinels.
var (
	ErrContentNotFound    = errors.New("content not found")
	ErrContentForbidden   = errors.New("content belongs to another faculty member")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrInvalidQuestions   = errors.New("invalid questions")
	ErrCourseNotAssigned  = errors.New("faculty is not assigned to this course")
	ErrQuestionIndex      = errors.New("question index out of range")
)

// ContentService exposes assessable content use cases.
type ContentService interface {
	Get(ctx context.Context, actor Actor, id uint) (dto.ContentResponse, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]dto.ContentResponse, error)
	ListByCourse(ctx context.Context, courseID uint, contentType string) ([]dto.ContentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.ContentCreateRequest) (dto.ContentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	AddQuestion(ctx context.Context, actor Actor, id uint, payload dto.QuestionAddRequest) (dto.ContentResponse, error)
	RemoveQuestion(ctx context.Context, actor Actor, id uint, index int) (dto.ContentResponse, error)
	GeneratePreview(ctx context.Context, actor Actor, payload dto.GenerateRequest) ([]dto.Question, error)
}

type contentService struct {
	contents    repository.ContentRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	generator   ai.Generator
	genTimeout  time.Duration
	recorder    ActivityRecorder
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewContentService builds a new content service.
func NewContentService(
	contents repository.ContentRepository,
	courses repository.CourseRepository,
	assignments repository.AssignmentRepository,
	generator ai.Generator,
	genTimeout time.Duration,
	recorder ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) ContentService {
	return &contentService{
		contents:    contents,
		courses:     courses,
		assignments: assignments,
		generator:   generator,
		genTimeout:  genTimeout,
		recorder:    recorder,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "content_service").Logger(),
	}
}

func (s *contentService) Get(ctx context.Context, actor Actor, id uint) (dto.ContentResponse, error) {
	content, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return dto.ContentResponse{}, err
	}

	return dto.NewContentResponse(content), nil
}

func (s *contentService) ListByFaculty(ctx context.Context, facultyID uint) ([]dto.ContentResponse, error) {
	contents, err := s.contents.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	return dto.NewContentResponseSlice(contents), nil
}

func (s *contentService) ListByCourse(ctx context.Context, courseID uint, contentType string) ([]dto.ContentResponse, error) {
	if contentType != "" && !models.ValidContentType(contentType) {
		return nil, ErrInvalidContentType
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	contents, err := s.contents.ListByCourse(ctx, courseID, contentType)
	if err != nil {
		return nil, err
	}

	return dto.NewContentResponseSlice(contents), nil
}

func (s *contentService) Create(ctx context.Context, actor Actor, payload dto.ContentCreateRequest) (dto.ContentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContentResponse{}, err
	}
	if !models.ValidContentType(payload.Type) {
		return dto.ContentResponse{}, ErrInvalidContentType
	}

	course, err := s.requireCourseAccess(ctx, actor, payload.CourseID)
	if err != nil {
		return dto.ContentResponse{}, err
	}

	questions := payload.Questions
	if payload.AutoGenerate {
		questions, err = s.generate(ctx, payload.Type, course)
		if err != nil {
			return dto.ContentResponse{}, err
		}
	}

	if err := dto.ValidateQuestions(payload.Type, questions); err != nil {
		return dto.ContentResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
	}

	encoded, err := json.Marshal(questions)
	if err != nil {
		return dto.ContentResponse{}, err
	}

	content := models.Content{
		Title:     s.sanitizer.Sanitize(payload.Title),
		Type:      payload.Type,
		Questions: datatypes.JSON(encoded),
		CourseID:  payload.CourseID,
		FacultyID: actor.ID,
	}

	if err := s.contents.Create(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "CONTENT_CREATE", map[string]interface{}{
		"content_id":     content.ID,
		"type":           content.Type,
		"course_id":      content.CourseID,
		"question_count": len(questions),
		"auto_generated": payload.AutoGenerate,
	})
	s.logger.Info().
		Uint("content_id", content.ID).
		Str("type", content.Type).
		Uint("course_id", content.CourseID).
		Msg("content created")

	created, err := s.contents.GetByID(ctx, content.ID)
	if err != nil {
		return dto.NewContentResponse(content), nil
	}

	return dto.NewContentResponse(created), nil
}

func (s *contentService) Update(ctx context.Context, actor Actor, id uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContentResponse{}, err
	}

	content, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return dto.ContentResponse{}, err
	}

	if payload.Type != nil {
		if !models.ValidContentType(*payload.Type) {
			return dto.ContentResponse{}, ErrInvalidContentType
		}
		content.Type = *payload.Type
	}
	if payload.Title != nil {
		content.Title = s.sanitizer.Sanitize(*payload.Title)
	}

	// Replacing questions, or changing the type, re-validates the stored list
	// against the effective type.
	questions := payload.Questions
	if questions == nil && payload.Type != nil {
		if err := json.Unmarshal(content.Questions, &questions); err != nil {
			return dto.ContentResponse{}, err
		}
	}
	if questions != nil {
		if err := dto.ValidateQuestions(content.Type, questions); err != nil {
			return dto.ContentResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
		}
		encoded, err := json.Marshal(questions)
		if err != nil {
			return dto.ContentResponse{}, err
		}
		content.Questions = datatypes.JSON(encoded)
	}

	if err := s.contents.Update(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "CONTENT_UPDATE", map[string]interface{}{
		"content_id": content.ID,
		"type":       content.Type,
	})

	return dto.NewContentResponse(content), nil
}

func (s *contentService) Delete(ctx context.Context, actor Actor, id uint) error {
	content, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.contents.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContentNotFound
		}
		return err
	}

	s.recorder.Record(ctx, actor.ID, "CONTENT_DELETE", map[string]interface{}{
		"content_id": id,
		"type":       content.Type,
		"course_id":  content.CourseID,
	})
	s.logger.Info().Uint("content_id", id).Msg("content deleted")

	return nil
}

func (s *contentService) AddQuestion(ctx context.Context, actor Actor, id uint, payload dto.QuestionAddRequest) (dto.ContentResponse, error) {
	content, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return dto.ContentResponse{}, err
	}

	var questions []dto.Question
	if len(content.Questions) > 0 {
		if err := json.Unmarshal(content.Questions, &questions); err != nil {
			return dto.ContentResponse{}, err
		}
	}
	questions = append(questions, payload.Question)

	if err := dto.ValidateQuestions(content.Type, questions); err != nil {
		return dto.ContentResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
	}

	encoded, err := json.Marshal(questions)
	if err != nil {
		return dto.ContentResponse{}, err
	}
	content.Questions = datatypes.JSON(encoded)

	if err := s.contents.Update(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "CONTENT_QUESTION_ADD", map[string]interface{}{
		"content_id":     content.ID,
		"question_count": len(questions),
	})

	return dto.NewContentResponse(content), nil
}

func (s *contentService) RemoveQuestion(ctx context.Context, actor Actor, id uint, index int) (dto.ContentResponse, error) {
	content, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return dto.ContentResponse{}, err
	}

	var questions []dto.Question
	if len(content.Questions) > 0 {
		if err := json.Unmarshal(content.Questions, &questions); err != nil {
			return dto.ContentResponse{}, err
		}
	}

	if index < 0 || index >= len(questions) {
		return dto.ContentResponse{}, ErrQuestionIndex
	}
	questions = append(questions[:index], questions[index+1:]...)

	if err := dto.ValidateQuestions(content.Type, questions); err != nil {
		return dto.ContentResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
	}

	encoded, err := json.Marshal(questions)
	if err != nil {
		return dto.ContentResponse{}, err
	}
	content.Questions = datatypes.JSON(encoded)

	if err := s.contents.Update(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	s.recorder.Record(ctx, actor.ID, "CONTENT_QUESTION_REMOVE", map[string]interface{}{
		"content_id":     content.ID,
		"index":          index,
		"question_count": len(questions),
	})

	return dto.NewContentResponse(content), nil
}

func (s *contentService) GeneratePreview(ctx context.Context, actor Actor, payload dto.GenerateRequest) ([]dto.Question, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}
	if !models.ValidContentType(payload.Type) {
		return nil, ErrInvalidContentType
	}

	course, err := s.requireCourseAccess(ctx, actor, payload.CourseID)
	if err != nil {
		return nil, err
	}

	questions, err := s.generate(ctx, payload.Type, course)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, "CONTENT_GENERATE_PREVIEW", map[string]interface{}{
		"type":           payload.Type,
		"course_id":      payload.CourseID,
		"question_count": len(questions),
	})

	return questions, nil
}

// requireCourseAccess resolves the course and verifies the actor may author
// content for it. Admins bypass the assignment check.
func (s *contentService) requireCourseAccess(ctx context.Context, actor Actor, courseID uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}

	if actor.IsAdmin() {
		return course, nil
	}

	if _, err := s.assignments.GetByPair(ctx, actor.ID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotAssigned
		}
		return models.Course{}, err
	}

	return course, nil
}

// getOwned fetches the content item and enforces the author-or-admin rule.
func (s *contentService) getOwned(ctx context.Context, actor Actor, id uint) (models.Content, error) {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Content{}, ErrContentNotFound
		}
		return models.Content{}, err
	}

	if content.FacultyID != actor.ID && !actor.IsAdmin() {
		return models.Content{}, ErrContentForbidden
	}

	return content, nil
}

// generate invokes the configured generator under the deadline and converts
// its output into the request question shape.
func (s *contentService) generate(ctx context.Context, contentType string, course models.Course) ([]dto.Question, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	info := ai.CourseInfo{Name: course.Name, Code: course.Code}
	for _, clo := range course.CLOs {
		info.Outcomes = append(info.Outcomes, clo.Description)
	}

	generated, err := s.generator.Generate(genCtx, contentType, info)
	if err != nil {
		s.logger.Error().Err(err).Str("type", contentType).Str("course", course.Code).Msg("question generation failed")
		if errors.Is(err, ai.ErrGenerationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ai.ErrGenerationFailed, err)
	}

	questions := make([]dto.Question, 0, len(generated))
	for _, q := range generated {
		questions = append(questions, dto.Question{
			Question: q.Question,
			Options:  q.Options,
			Answer:   q.Answer,
			Points:   q.Points,
			Essay:    q.Essay,
		})
	}

	return questions, nil
}
