package dto

import (
	"time"

	"github.com/credentia/credentia-api/internal/models"
)

// LearnerCreateRequest registers a learner.
type LearnerCreateRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
}

// LearnerResponse serializes a learner.
type LearnerResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLearnerResponse converts a Learner model into a DTO.
func NewLearnerResponse(model models.Learner) LearnerResponse {
	return LearnerResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		CreatedAt: model.CreatedAt,
	}
}

// NewLearnerResponseSlice converts learner models into DTOs.
func NewLearnerResponseSlice(learners []models.Learner) []LearnerResponse {
	responses := make([]LearnerResponse, 0, len(learners))
	for _, learner := range learners {
		responses = append(responses, NewLearnerResponse(learner))
	}
	return responses
}
