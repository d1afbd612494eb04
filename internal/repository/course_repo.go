package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/models"
)

// CourseFilter narrows course listings.
type CourseFilter struct {
	Code string
	Name string
}

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetByCode(ctx context.Context, code string) (models.Course, error)
	// CreateBundle persists the course, its nested CLOs and the optional
	// assignment as one transaction: all rows or none.
	CreateBundle(ctx context.Context, course *models.Course, assignment *models.FacultyCourseAssignment) error
	Update(ctx context.Context, course *models.Course) error
	// DeleteCascade removes the course together with its CLOs and faculty
	// assignments in one transaction.
	DeleteCascade(ctx context.Context, id uint) error
	ListByFaculty(ctx context.Context, facultyID uint) ([]models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filter.Code != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(filter.Code))+"%")
	}
	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(filter.Name))+"%")
	}

	var courses []models.Course
	err := query.
		Preload("CLOs", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Preload("FacultyLinks.Faculty").
		Order("code ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("CLOs", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Preload("FacultyLinks.Faculty").
		First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetByCode(ctx context.Context, code string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&course).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) CreateBundle(ctx context.Context, course *models.Course, assignment *models.FacultyCourseAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		if assignment != nil {
			assignment.CourseID = course.ID
			if err := tx.Create(assignment).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.CLO{}).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.FacultyCourseAssignment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (r *courseRepository) ListByFaculty(ctx context.Context, facultyID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN faculty_course_assignments ON faculty_course_assignments.course_id = courses.id").
		Where("faculty_course_assignments.faculty_id = ?", facultyID).
		Preload("CLOs", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Preload("Contents").
		Order("faculty_course_assignments.assigned_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}
