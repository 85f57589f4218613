package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
)

// LearnerRepository defines data operations for learners.
type LearnerRepository interface {
	List(ctx context.Context) ([]models.Learner, error)
	GetByID(ctx context.Context, id uint) (models.Learner, error)
	Create(ctx context.Context, learner *models.Learner) error
}

type learnerRepository struct {
	db *gorm.DB
}

// NewLearnerRepository instantiates the repository.
func NewLearnerRepository(db *gorm.DB) LearnerRepository {
	return &learnerRepository{db: db}
}

func (r *learnerRepository) List(ctx context.Context) ([]models.Learner, error) {
	var learners []models.Learner
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&learners).Error; err != nil {
		return nil, err
	}
	return learners, nil
}

func (r *learnerRepository) GetByID(ctx context.Context, id uint) (models.Learner, error) {
	var learner models.Learner
	if err := r.db.WithContext(ctx).First(&learner, id).Error; err != nil {
		return models.Learner{}, err
	}
	return learner, nil
}

func (r *learnerRepository) Create(ctx context.Context, learner *models.Learner) error {
	return r.db.WithContext(ctx).Create(learner).Error
}
