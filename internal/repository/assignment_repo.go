package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/models"
)

// AssignmentFilter narrows faculty-course assignment listings.
type AssignmentFilter struct {
	FacultyID *uint
	CourseID  *uint
}

// AssignmentRepository defines persistence operations for faculty-course
// assignments.
type AssignmentRepository interface {
	List(ctx context.Context, filter AssignmentFilter) ([]models.FacultyCourseAssignment, error)
	GetByID(ctx context.Context, id uint) (models.FacultyCourseAssignment, error)
	GetByPair(ctx context.Context, facultyID, courseID uint) (models.FacultyCourseAssignment, error)
	Create(ctx context.Context, assignment *models.FacultyCourseAssignment) error
	DeleteByPair(ctx context.Context, facultyID, courseID uint) error
	// ListExistingCourseIDs returns the subset of courseIDs the faculty member
	// is already assigned to.
	ListExistingCourseIDs(ctx context.Context, facultyID uint, courseIDs []uint) ([]uint, error)
	// ListExistingFacultyIDs returns the subset of facultyIDs already assigned
	// to the course.
	ListExistingFacultyIDs(ctx context.Context, courseID uint, facultyIDs []uint) ([]uint, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.FacultyCourseAssignment, error) {
	query := r.db.WithContext(ctx).Model(&models.FacultyCourseAssignment{})

	if filter.FacultyID != nil {
		query = query.Where("faculty_id = ?", *filter.FacultyID)
	}
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	var assignments []models.FacultyCourseAssignment
	err := query.
		Preload("Faculty").
		Preload("Course").
		Order("assigned_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.FacultyCourseAssignment, error) {
	var assignment models.FacultyCourseAssignment
	err := r.db.WithContext(ctx).
		Preload("Faculty").
		Preload("Course").
		First(&assignment, id).Error
	if err != nil {
		return models.FacultyCourseAssignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) GetByPair(ctx context.Context, facultyID, courseID uint) (models.FacultyCourseAssignment, error) {
	var assignment models.FacultyCourseAssignment
	err := r.db.WithContext(ctx).
		Where("faculty_id = ? AND course_id = ?", facultyID, courseID).
		First(&assignment).Error
	if err != nil {
		return models.FacultyCourseAssignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.FacultyCourseAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) DeleteByPair(ctx context.Context, facultyID, courseID uint) error {
	result := r.db.WithContext(ctx).
		Where("faculty_id = ? AND course_id = ?", facultyID, courseID).
		Delete(&models.FacultyCourseAssignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) ListExistingCourseIDs(ctx context.Context, facultyID uint, courseIDs []uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.FacultyCourseAssignment{}).
		Where("faculty_id = ? AND course_id IN ?", facultyID, courseIDs).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *assignmentRepository) ListExistingFacultyIDs(ctx context.Context, courseID uint, facultyIDs []uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.FacultyCourseAssignment{}).
		Where("course_id = ? AND faculty_id IN ?", courseID, facultyIDs).
		Pluck("faculty_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
