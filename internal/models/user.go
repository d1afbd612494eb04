package models

import "time"

// Roles recognised by the API.
const (
	RoleAdmin   = "ADMIN"
	RoleFaculty = "FACULTY"
)

// User represents an administrator or faculty member.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null;default:FACULTY" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Contents    []Content                 `gorm:"foreignKey:FacultyID" json:"contents,omitempty"`
	CourseLinks []FacultyCourseAssignment `gorm:"foreignKey:FacultyID" json:"course_links,omitempty"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFaculty reports whether the user holds the FACULTY role.
func (u User) IsFaculty() bool {
	return u.Role == RoleFaculty
}

// ValidRole reports whether the value is one of the recognised roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleFaculty
}
