package dto

import (
	"time"

	"github.com/acadex/acadex-api/internal/models"
)

// AssignRequest links one faculty member to one course.
type AssignRequest struct {
	FacultyID uint `json:"faculty_id" validate:"required"`
	CourseID  uint `json:"course_id" validate:"required"`
}

// BulkAssignCoursesRequest assigns several courses to one faculty member.
type BulkAssignCoursesRequest struct {
	FacultyID uint   `json:"faculty_id" validate:"required"`
	CourseIDs []uint `json:"course_ids" validate:"required,min=1,dive,required"`
}

// BulkAssignFacultyRequest assigns several faculty members to one course.
type BulkAssignFacultyRequest struct {
	CourseID   uint   `json:"course_id" validate:"required"`
	FacultyIDs []uint `json:"faculty_ids" validate:"required,min=1,dive,required"`
}

// AssignmentResponse is the serialized faculty-course link.
type AssignmentResponse struct {
	ID         uint      `json:"id"`
	FacultyID  uint      `json:"faculty_id"`
	CourseID   uint      `json:"course_id"`
	AssignedAt time.Time `json:"assigned_at"`

	Faculty *UserSummary   `json:"faculty,omitempty"`
	Course  *CourseSummary `json:"course,omitempty"`
}

// BulkAssignResponse reports the outcome of a bulk reconciliation. Pairs that
// already existed are skipped, never treated as errors.
type BulkAssignResponse struct {
	CreatedCount       int                  `json:"created_count"`
	SkippedCount       int                  `json:"skipped_count"`
	Created            []AssignmentResponse `json:"created"`
	AlreadyAssignedIDs []uint               `json:"already_assigned_ids"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.FacultyCourseAssignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:         model.ID,
		FacultyID:  model.FacultyID,
		CourseID:   model.CourseID,
		AssignedAt: model.AssignedAt,
	}

	if model.Faculty != nil {
		summary := NewUserSummary(*model.Faculty)
		response.Faculty = &summary
	}

	if model.Course != nil {
		summary := NewCourseSummary(*model.Course)
		response.Course = &summary
	}

	return response
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.FacultyCourseAssignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
