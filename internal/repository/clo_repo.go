package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/models"
)

// CLORepository defines persistence operations for course learning outcomes.
type CLORepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.CLO, error)
	GetByID(ctx context.Context, id uint) (models.CLO, error)
	GetByCourseAndNumber(ctx context.Context, courseID uint, number int) (models.CLO, error)
	Create(ctx context.Context, clo *models.CLO) error
	Update(ctx context.Context, clo *models.CLO) error
	Delete(ctx context.Context, id uint) error
}

type cloRepository struct {
	db *gorm.DB
}

// NewCLORepository instantiates a GORM-backed repository.
func NewCLORepository(db *gorm.DB) CLORepository {
	return &cloRepository{db: db}
}

func (r *cloRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.CLO, error) {
	var clos []models.CLO
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("number ASC").
		Find(&clos).Error
	if err != nil {
		return nil, err
	}

	return clos, nil
}

func (r *cloRepository) GetByID(ctx context.Context, id uint) (models.CLO, error) {
	var clo models.CLO
	if err := r.db.WithContext(ctx).First(&clo, id).Error; err != nil {
		return models.CLO{}, err
	}

	return clo, nil
}

func (r *cloRepository) GetByCourseAndNumber(ctx context.Context, courseID uint, number int) (models.CLO, error) {
	var clo models.CLO
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND number = ?", courseID, number).
		First(&clo).Error
	if err != nil {
		return models.CLO{}, err
	}

	return clo, nil
}

func (r *cloRepository) Create(ctx context.Context, clo *models.CLO) error {
	return r.db.WithContext(ctx).Create(clo).Error
}

func (r *cloRepository) Update(ctx context.Context, clo *models.CLO) error {
	return r.db.WithContext(ctx).Save(clo).Error
}

func (r *cloRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CLO{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
