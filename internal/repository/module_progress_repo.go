package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
)

// ModuleProgressRepository defines data operations for module completion rows.
// There is deliberately no update or delete: completion is never reversed by
// the engine.
type ModuleProgressRepository interface {
	ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.ModuleProgress, error)
	Get(ctx context.Context, enrollmentID, moduleID uint) (models.ModuleProgress, error)
	Create(ctx context.Context, progress *models.ModuleProgress) error
}

type moduleProgressRepository struct {
	db *gorm.DB
}

// NewModuleProgressRepository instantiates the repository.
func NewModuleProgressRepository(db *gorm.DB) ModuleProgressRepository {
	return &moduleProgressRepository{db: db}
}

func (r *moduleProgressRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.ModuleProgress, error) {
	var rows []models.ModuleProgress
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("completed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *moduleProgressRepository) Get(ctx context.Context, enrollmentID, moduleID uint) (models.ModuleProgress, error) {
	var row models.ModuleProgress
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Where("module_id = ?", moduleID).
		First(&row).Error; err != nil {
		return models.ModuleProgress{}, err
	}
	return row, nil
}

func (r *moduleProgressRepository) Create(ctx context.Context, progress *models.ModuleProgress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}
