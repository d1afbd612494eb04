package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/models"
)

// ContentRepository defines persistence operations for assessable content.
type ContentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Content, error)
	Create(ctx context.Context, content *models.Content) error
	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id uint) error
	ListByFaculty(ctx context.Context, facultyID uint) ([]models.Content, error)
	ListByCourse(ctx context.Context, courseID uint, contentType string) ([]models.Content, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository instantiates a GORM-backed repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (models.Content, error) {
	var content models.Content
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Faculty").
		First(&content, id).Error
	if err != nil {
		return models.Content{}, err
	}

	return content, nil
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) Update(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Save(content).Error
}

func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Content{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contentRepository) ListByFaculty(ctx context.Context, facultyID uint) ([]models.Content, error) {
	var contents []models.Content
	err := r.db.WithContext(ctx).
		Where("faculty_id = ?", facultyID).
		Preload("Course").
		Order("created_at DESC").
		Find(&contents).Error
	if err != nil {
		return nil, err
	}

	return contents, nil
}

func (r *contentRepository) ListByCourse(ctx context.Context, courseID uint, contentType string) ([]models.Content, error) {
	query := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if contentType != "" {
		query = query.Where("type = ?", contentType)
	}

	var contents []models.Content
	err := query.
		Preload("Course").
		Preload("Faculty").
		Order("created_at DESC").
		Find(&contents).Error
	if err != nil {
		return nil, err
	}

	return contents, nil
}

func (r *contentRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Content{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
