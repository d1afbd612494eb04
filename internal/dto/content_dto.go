package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/acadex/acadex-api/internal/models"
)

// Question is one record in a content item's ordered question list. Which
// fields are required depends on the content type: QUIZ questions carry
// options and an answer, ASSIGNMENT questions carry points, EXAM questions
// carry points plus either options+answer or the essay flag.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Points   int      `json:"points,omitempty"`
	Essay    bool     `json:"essay,omitempty"`
}

// ValidateQuestions checks a question list against the shape rules of the
// given content type. The list must be non-empty.
func ValidateQuestions(contentType string, questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("questions must not be empty")
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d: text is required", i)
		}

		switch contentType {
		case models.ContentTypeQuiz:
			if len(q.Options) < 2 {
				return fmt.Errorf("question %d: quiz questions need at least two options", i)
			}
			if strings.TrimSpace(q.Answer) == "" {
				return fmt.Errorf("question %d: quiz questions need an answer", i)
			}
		case models.ContentTypeAssignment:
			if q.Points <= 0 {
				return fmt.Errorf("question %d: assignment questions need points", i)
			}
		case models.ContentTypeExam:
			if q.Points <= 0 {
				return fmt.Errorf("question %d: exam questions need points", i)
			}
			if !q.Essay && (len(q.Options) < 2 || strings.TrimSpace(q.Answer) == "") {
				return fmt.Errorf("question %d: exam questions need options and an answer unless marked essay", i)
			}
		}
	}

	return nil
}

// ContentCreateRequest is the payload for creating a content item. Questions
// may be supplied directly or produced by the generator when AutoGenerate is set.
type ContentCreateRequest struct {
	Title        string     `json:"title" validate:"required,min=2"`
	Type         string     `json:"type" validate:"required"`
	CourseID     uint       `json:"course_id" validate:"required"`
	Questions    []Question `json:"questions"`
	AutoGenerate bool       `json:"auto_generate"`
}

// ContentUpdateRequest captures partial update payloads for content items.
type ContentUpdateRequest struct {
	Title     *string    `json:"title" validate:"omitempty,min=2"`
	Type      *string    `json:"type"`
	Questions []Question `json:"questions"`
}

// QuestionAddRequest appends one question to a content item.
type QuestionAddRequest struct {
	Question Question `json:"question"`
}

// GenerateRequest asks the generator for questions without persisting anything.
type GenerateRequest struct {
	Type     string `json:"type" validate:"required"`
	CourseID uint   `json:"course_id" validate:"required"`
}

// ContentResponse is the serialized content item with its question list and
// course/author summaries.
type ContentResponse struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Type      string     `json:"type"`
	Questions []Question `json:"questions"`
	CourseID  uint       `json:"course_id"`
	FacultyID uint       `json:"faculty_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Course  *CourseSummary `json:"course,omitempty"`
	Faculty *UserSummary   `json:"faculty,omitempty"`
}

// NewContentResponse converts a model into a DTO, decoding the stored
// question list.
func NewContentResponse(model models.Content) ContentResponse {
	response := ContentResponse{
		ID:        model.ID,
		Title:     model.Title,
		Type:      model.Type,
		CourseID:  model.CourseID,
		FacultyID: model.FacultyID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	if len(model.Questions) > 0 {
		var questions []Question
		if err := json.Unmarshal(model.Questions, &questions); err == nil {
			response.Questions = questions
		}
	}

	if model.Course != nil {
		summary := NewCourseSummary(*model.Course)
		response.Course = &summary
	}

	if model.Faculty != nil {
		summary := NewUserSummary(*model.Faculty)
		response.Faculty = &summary
	}

	return response
}

// NewContentResponseSlice converts a slice of models into DTOs.
func NewContentResponseSlice(contents []models.Content) []ContentResponse {
	responses := make([]ContentResponse, 0, len(contents))
	for _, content := range contents {
		responses = append(responses, NewContentResponse(content))
	}

	return responses
}
