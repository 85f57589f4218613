package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
)

// GradeRepository defines data operations for grade records.
type GradeRepository interface {
	ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.GradeRecord, error)
	// GetCourseFinal returns the authoritative course-final grade for the
	// enrollment. When several exist the most recently graded wins.
	GetCourseFinal(ctx context.Context, enrollmentID uint) (models.GradeRecord, error)
	Create(ctx context.Context, grade *models.GradeRecord) error
	Update(ctx context.Context, grade *models.GradeRecord) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.GradeRecord, error) {
	var grades []models.GradeRecord
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("graded_at DESC").
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *gradeRepository) GetCourseFinal(ctx context.Context, enrollmentID uint) (models.GradeRecord, error) {
	var grade models.GradeRecord
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Where("module_id IS NULL").
		Order("graded_at DESC").
		First(&grade).Error; err != nil {
		return models.GradeRecord{}, err
	}
	return grade, nil
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.GradeRecord) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.GradeRecord) error {
	return r.db.WithContext(ctx).Save(grade).Error
}
