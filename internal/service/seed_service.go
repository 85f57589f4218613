package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads development fixtures. It is gated twice: a config switch
// and a shared token, and is never wired in production environments.
type SeedService interface {
	SeedLearners(ctx context.Context, token string, items []models.Learner) (int, error)
	SeedCourses(ctx context.Context, token string, items []models.Course) (int, error)
}

type seedService struct {
	learners repository.LearnerRepository
	courses  repository.CourseRepository
	enabled  bool
	token    string
	logger   zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(learners repository.LearnerRepository, courses repository.CourseRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		learners: learners,
		courses:  courses,
		enabled:  enabled,
		token:    token,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedLearners(ctx context.Context, token string, items []models.Learner) (int, error) {
	if err := s.authorize(token); err != nil {
		return 0, err
	}

	created := 0
	for i := range items {
		items[i].Email = strings.ToLower(strings.TrimSpace(items[i].Email))
		if err := s.learners.Create(ctx, &items[i]); err != nil {
			// Existing emails are skipped so seeding stays re-runnable.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return created, err
		}
		created++
	}

	s.logger.Info().Int("created", created).Int("requested", len(items)).Msg("learners seeded")
	return created, nil
}

func (s *seedService) SeedCourses(ctx context.Context, token string, items []models.Course) (int, error) {
	if err := s.authorize(token); err != nil {
		return 0, err
	}

	created := 0
	for i := range items {
		course := &items[i]
		if course.PolicyKind == "" {
			course.PolicyKind = models.PolicyModulePercentage
		}
		if !models.ValidPolicyKind(course.PolicyKind) || !course.ThresholdInRange() {
			return created, ErrInvalidPolicy
		}
		for j := range course.Modules {
			if course.Modules[j].Position == 0 {
				course.Modules[j].Position = j + 1
			}
		}
		if err := s.courses.Create(ctx, course); err != nil {
			return created, err
		}
		created++
	}

	s.logger.Info().Int("created", created).Msg("courses seeded")
	return created, nil
}

func (s *seedService) authorize(token string) error {
	if !s.enabled {
		return ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return ErrSeedUnauthorized
	}
	return nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtleConstantTimeCompare(expected, strings.TrimSpace(token))
}

func subtleConstantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}
