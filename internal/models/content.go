package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content types supported by the repository.
const (
	ContentTypeQuiz       = "QUIZ"
	ContentTypeAssignment = "ASSIGNMENT"
	ContentTypeExam       = "EXAM"
)

// Content is an assessable item authored by one faculty member for one course.
// Questions holds the ordered question records as a JSON array.
type Content struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Type      string         `gorm:"size:32;not null" json:"type"`
	Questions datatypes.JSON `gorm:"type:json;not null" json:"questions"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	FacultyID uint           `gorm:"not null;index" json:"faculty_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Course  *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Faculty *User   `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
}

// ValidContentType reports whether the value is one of the supported content types.
func ValidContentType(contentType string) bool {
	switch contentType {
	case ContentTypeQuiz, ContentTypeAssignment, ContentTypeExam:
		return true
	default:
		return false
	}
}
