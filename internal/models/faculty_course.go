package models

import "time"

// FacultyCourseAssignment links one faculty member to one course.
// The (FacultyID, CourseID) pair is unique.
type FacultyCourseAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FacultyID  uint      `gorm:"not null;uniqueIndex:idx_faculty_course" json:"faculty_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_faculty_course" json:"course_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	Faculty *User   `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Course  *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
