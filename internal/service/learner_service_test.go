package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/credentia/credentia-api/internal/dto"
)

func TestCreateLearnerNormalizesEmail(t *testing.T) {
	env := newEngineEnv(t)
	service := NewLearnerService(env.learners, env.validate, zerolog.Nop())

	learner, err := service.Create(context.Background(), dto.LearnerCreateRequest{
		Name:  "Eka Putra",
		Email: "  Eka.Putra@Example.COM ",
	})
	require.NoError(t, err)
	require.Equal(t, "eka.putra@example.com", learner.Email)
}

func TestCreateLearnerRejectsDuplicateEmail(t *testing.T) {
	env := newEngineEnv(t)
	service := NewLearnerService(env.learners, env.validate, zerolog.Nop())
	ctx := context.Background()

	_, err := service.Create(ctx, dto.LearnerCreateRequest{Name: "Eka Putra", Email: "eka@example.com"})
	require.NoError(t, err)

	_, err = service.Create(ctx, dto.LearnerCreateRequest{Name: "Someone Else", Email: "EKA@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetLearnerNotFound(t *testing.T) {
	env := newEngineEnv(t)
	service := NewLearnerService(env.learners, env.validate, zerolog.Nop())

	_, err := service.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrLearnerNotFound)
}
