package models

import "time"

// Course is a catalog entry identified by a globally unique code.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	CreditHours int       `gorm:"not null;default:3" json:"credit_hours"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CLOs         []CLO                     `gorm:"foreignKey:CourseID" json:"clos,omitempty"`
	Contents     []Content                 `gorm:"foreignKey:CourseID" json:"contents,omitempty"`
	FacultyLinks []FacultyCourseAssignment `gorm:"foreignKey:CourseID" json:"faculty_links,omitempty"`
}

// CLO is a numbered course learning outcome. Numbers are unique within a course.
type CLO struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Number      int       `gorm:"not null;uniqueIndex:idx_clo_course_number" json:"number"`
	CourseID    uint      `gorm:"not null;uniqueIndex:idx_clo_course_number" json:"course_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
