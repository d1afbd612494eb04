package dto

import (
	"time"

	"github.com/acadex/acadex-api/internal/models"
)

// CLOSeed describes a learning outcome created together with its course.
type CLOSeed struct {
	Number      int    `json:"number" validate:"omitempty,min=1"`
	Description string `json:"description" validate:"required,min=3"`
}

// CourseCreateRequest is the payload for creating a course, optionally with
// initial CLOs and a faculty assignment.
type CourseCreateRequest struct {
	Name        string    `json:"name" validate:"required,min=2"`
	Code        string    `json:"code" validate:"required,min=2,max=64"`
	Description string    `json:"description"`
	CreditHours int       `json:"credit_hours" validate:"omitempty,min=1,max=12"`
	CLOs        []CLOSeed `json:"clos" validate:"omitempty,dive"`
	FacultyID   *uint     `json:"faculty_id"`
}

// CourseUpdateRequest captures partial update payloads for courses.
type CourseUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2"`
	Code        *string `json:"code" validate:"omitempty,min=2,max=64"`
	Description *string `json:"description"`
	CreditHours *int    `json:"credit_hours" validate:"omitempty,min=1,max=12"`
	FacultyID   *uint   `json:"faculty_id"`
}

// CLOResponse is the serialized learning outcome.
type CLOResponse struct {
	ID          uint      `json:"id"`
	Number      int       `json:"number"`
	Description string    `json:"description"`
	CourseID    uint      `json:"course_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CourseResponse is the serialized course with its CLOs and assigned faculty.
type CourseResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreditHours int       `json:"credit_hours"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CLOs     []CLOResponse     `json:"clos"`
	Faculty  []UserSummary     `json:"faculty,omitempty"`
	Contents []ContentResponse `json:"contents,omitempty"`
}

// NewCLOResponse converts a model into a DTO.
func NewCLOResponse(model models.CLO) CLOResponse {
	return CLOResponse{
		ID:          model.ID,
		Number:      model.Number,
		Description: model.Description,
		CourseID:    model.CourseID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewCLOResponseSlice converts a slice of models into DTOs.
func NewCLOResponseSlice(clos []models.CLO) []CLOResponse {
	responses := make([]CLOResponse, 0, len(clos))
	for _, clo := range clos {
		responses = append(responses, NewCLOResponse(clo))
	}

	return responses
}

// NewCourseResponse converts a model into a DTO, flattening assigned faculty
// into summaries.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:          model.ID,
		Name:        model.Name,
		Code:        model.Code,
		Description: model.Description,
		CreditHours: model.CreditHours,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		CLOs:        NewCLOResponseSlice(model.CLOs),
	}

	for _, link := range model.FacultyLinks {
		if link.Faculty != nil {
			response.Faculty = append(response.Faculty, UserSummary{
				ID:    link.Faculty.ID,
				Name:  link.Faculty.Name,
				Email: link.Faculty.Email,
			})
		}
	}

	for _, content := range model.Contents {
		response.Contents = append(response.Contents, NewContentResponse(content))
	}

	return response
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

// NewCourseSummary converts a model into its compact representation.
func NewCourseSummary(model models.Course) CourseSummary {
	return CourseSummary{
		ID:   model.ID,
		Name: model.Name,
		Code: model.Code,
	}
}
