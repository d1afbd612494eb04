package dto

// CLOCreateRequest is the payload for creating a learning outcome.
type CLOCreateRequest struct {
	CourseID    uint   `json:"course_id" validate:"required"`
	Number      int    `json:"number" validate:"required,min=1"`
	Description string `json:"description" validate:"required,min=3"`
}

// CLOUpdateRequest captures partial update payloads for learning outcomes.
type CLOUpdateRequest struct {
	Number      *int    `json:"number" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=3"`
}
