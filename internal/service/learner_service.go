package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

// ErrEmailTaken indicates a learner with the email already exists.
var ErrEmailTaken = errors.New("email already registered")

// LearnerService manages learner records.
type LearnerService interface {
	Create(ctx context.Context, payload dto.LearnerCreateRequest) (dto.LearnerResponse, error)
	List(ctx context.Context) ([]dto.LearnerResponse, error)
	GetByID(ctx context.Context, id uint) (dto.LearnerResponse, error)
}

type learnerService struct {
	learners  repository.LearnerRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLearnerService constructs a LearnerService instance.
func NewLearnerService(learners repository.LearnerRepository, validate *validator.Validate, logger zerolog.Logger) LearnerService {
	return &learnerService{
		learners:  learners,
		validator: validate,
		logger:    logger.With().Str("component", "learner_service").Logger(),
	}
}

func (s *learnerService) Create(ctx context.Context, payload dto.LearnerCreateRequest) (dto.LearnerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LearnerResponse{}, err
	}

	learner := models.Learner{
		Name:  strings.TrimSpace(payload.Name),
		Email: strings.ToLower(strings.TrimSpace(payload.Email)),
	}
	if err := s.learners.Create(ctx, &learner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.LearnerResponse{}, ErrEmailTaken
		}
		return dto.LearnerResponse{}, err
	}

	s.logger.Info().Uint("learner_id", learner.ID).Msg("learner registered")

	return dto.NewLearnerResponse(learner), nil
}

func (s *learnerService) List(ctx context.Context) ([]dto.LearnerResponse, error) {
	learners, err := s.learners.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewLearnerResponseSlice(learners), nil
}

func (s *learnerService) GetByID(ctx context.Context, id uint) (dto.LearnerResponse, error) {
	learner, err := s.learners.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LearnerResponse{}, ErrLearnerNotFound
		}
		return dto.LearnerResponse{}, err
	}
	return dto.NewLearnerResponse(learner), nil
}
